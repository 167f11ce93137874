package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	billingapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/billing"
	documentapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	identityapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	leaveapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/leave"
	notificationapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/billing"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/llm"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/mail"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/push"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/realtime"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/storage"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Every optional integration has a local stand-in so a development server
// starts with nothing but a database. The stand-ins log what they would send.

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (documentapp.ObjectStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, keeping uploads in memory")
		return storage.NewMemoryObjectStorage(), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}

func newMailer(cfg *config.Config, log *zap.Logger) identityapp.InvitationMailer {
	if !cfg.Mail.Enabled {
		return mail.NewLogMailer(log)
	}
	smtp, err := mail.NewSMTPMailer(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	return smtp
}

func newPushSender(ctx context.Context, cfg *config.Config, log *zap.Logger) notificationapp.PushSender {
	if !cfg.Push.Enabled {
		return push.NewLogSender(log)
	}
	fcm, err := push.NewFCMClient(ctx, cfg.Push, log)
	if err != nil {
		log.Fatal("Failed to initialize push client", zap.Error(err))
	}
	return fcm
}

// newTranslator returns nil when translation is off; holidays then keep
// their original name only.
func newTranslator(cfg *config.Config, log *zap.Logger) leaveapp.HolidayTranslator {
	if !cfg.LLM.Enabled {
		return nil
	}
	t, err := llm.NewTranslator(cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to initialize translator", zap.Error(err))
	}
	return t
}

// newSubscriptionProvider returns nil without Stripe, which leaves every
// organization on its stored subscription state.
func newSubscriptionProvider(cfg *config.Config, log *zap.Logger) billingapp.SubscriptionProvider {
	if !cfg.Stripe.Enabled {
		return nil
	}
	adapter, err := billing.NewStripeAdapter(billing.NewStripeConfig(cfg.Stripe), log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}
	return adapter
}

func newBroker(cfg *config.Config, client *redis.Client, log *zap.Logger) realtime.Broker {
	if client == nil {
		return realtime.NewLocalBroker()
	}
	return realtime.NewRedisBroker(client, cfg.Chat.PubSubChannel, log)
}

// newLoginLimiter shares attempt counts across replicas when Redis is up
func newLoginLimiter(cfg *config.Config, client *redis.Client) middleware.Limiter {
	if client == nil {
		return middleware.NewLocalLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	}
	return middleware.NewRedisLimiter(client, "ratelimit:auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
}

// allowedOrigin accepts WebSocket upgrades from the CORS origins. Requests
// without an Origin header come from native clients and pass.
func allowedOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[u.Scheme+"://"+u.Host]
	}
}
