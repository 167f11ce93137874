// Command server runs the HR portal API: authentication, leave, payroll,
// documents, tasks, chat, notifications and billing for every organization.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/billing"
	chatapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/chat"
	documentapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/document"
	identityapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/application/jobs"
	leaveapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/leave"
	notificationapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	payrollapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/payroll"
	taskapp "github.com/We2399/idea-launcher-pro-sub001/internal/application/task"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/authz"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/cache"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/event"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/export"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/printing"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/realtime"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/rules"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/scheduler"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/handler"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/middleware"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting HR portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Version:           version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilerAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilerAuthPass,
		ProfileTypes:      cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	tracer.EnableSpanProfiles(profiler)
	metrics := telemetry.NewMetrics()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.DBTraceEnabled, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist, subscription cache, login limiter and
	// the chat fan-out. Without it each falls back to process memory.
	caches := cache.NewFactory(cfg.Redis, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.IsProduction()))
	if err := caches.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = caches.Close() }()
	redisClient := caches.Client()

	tdb := db.Tenant()
	orgRepo := persistence.NewGormOrganizationRepository(tdb)
	userRepo := persistence.NewGormUserRepository(tdb)
	memberRepo := persistence.NewGormMemberRepository(tdb)
	roleRepo := persistence.NewGormUserRoleRepository(tdb)
	profileRepo := persistence.NewGormProfileRepository(tdb)
	preferenceRepo := persistence.NewGormPreferenceRepository(tdb)
	deviceRepo := persistence.NewGormDeviceTokenRepository(tdb)
	invitationRepo := persistence.NewGormInvitationRepository(tdb)
	leaveTypeRepo := persistence.NewGormLeaveTypeRepository(tdb)
	balanceRepo := persistence.NewGormBalanceRepository(tdb)
	leaveRequestRepo := persistence.NewGormLeaveRequestRepository(tdb)
	holidayRepo := persistence.NewGormHolidayRepository(tdb)
	payrollRepo := persistence.NewGormPayrollRecordRepository(tdb)
	payrollNoticeRepo := persistence.NewGormPayrollNotificationRepository(tdb)
	documentRepo := persistence.NewGormDocumentRepository(tdb)
	commentRepo := persistence.NewGormCommentRepository(tdb)
	profileDocRepo := persistence.NewGormProfileDocumentRepository(tdb)
	taskRepo := persistence.NewGormTaskRepository(tdb)
	chatRepo := persistence.NewGormChatRepository(tdb)

	bus := event.NewInMemoryEventBus(log)

	// Outbound integrations
	objects, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	pdf, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Payroll.PayslipRenderTimeout,
		ExecPath:       cfg.Payroll.ChromeExecPath,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() { _ = pdf.Close() }()
	evaluator, err := rules.NewEvaluator()
	if err != nil {
		log.Fatal("Failed to compile leave eligibility rules", zap.Error(err))
	}

	hub := realtime.NewHub(log,
		realtime.WithPingInterval(cfg.Chat.PingInterval),
		realtime.WithWriteTimeout(cfg.Chat.WriteTimeout),
		realtime.WithSendBuffer(cfg.Chat.SendBufferSize),
		realtime.WithBroker(newBroker(cfg, redisClient, log)),
		realtime.WithMetrics(metrics),
		realtime.WithCheckOrigin(allowedOrigin(cfg.HTTP.CORSAllowOrigins)),
	)

	// Application services
	locales := identityapp.NewLocaleMatcher(cfg.App.SupportedLocales)
	jwtService := auth.NewJWTService(cfg.JWT)
	dir := identityapp.Directory{
		Organizations: orgRepo,
		Users:         userRepo,
		Members:       memberRepo,
		Roles:         roleRepo,
		Profiles:      profileRepo,
		Preferences:   preferenceRepo,
	}
	authService := identityapp.NewAuthService(dir, db, jwtService, caches.TokenBlacklist(), bus, locales, identityapp.DefaultAuthServiceConfig(), log)
	accountService := identityapp.NewAccountService(dir, deviceRepo, objects, locales, log)
	invitationService := identityapp.NewInvitationService(dir, invitationRepo, db, newMailer(cfg, log), bus, locales,
		identityapp.InvitationServiceConfig{TTL: cfg.Invitation.TTL, PublicURL: cfg.App.PublicURL}, log)
	memberService := identityapp.NewMemberService(dir, db, bus, log)
	organizationService := identityapp.NewOrganizationService(orgRepo, locales, log)

	leaveRepos := leaveapp.Repositories{
		Types:         leaveTypeRepo,
		Balances:      balanceRepo,
		Requests:      leaveRequestRepo,
		Holidays:      holidayRepo,
		Organizations: orgRepo,
		Members:       memberRepo,
	}
	leaveTypeService := leaveapp.NewTypeService(leaveTypeRepo, evaluator, log)
	balanceService := leaveapp.NewBalanceService(leaveRepos, db, log)
	requestService := leaveapp.NewRequestService(leaveRepos, db, bus, evaluator, metrics,
		leaveapp.Config{EnforceBalance: cfg.Leave.EnforceBalance}, log)
	holidayService := leaveapp.NewHolidayService(holidayRepo, newTranslator(cfg, log), locales, log)

	payrollRepos := payrollapp.Repositories{
		Records:       payrollRepo,
		Notifications: payrollNoticeRepo,
		Organizations: orgRepo,
		Members:       memberRepo,
		Profiles:      profileRepo,
	}
	recordService := payrollapp.NewRecordService(payrollRepos, db, bus, metrics,
		payrollapp.Config{DefaultCurrency: cfg.Payroll.DefaultCurrency}, log)
	reportService := payrollapp.NewReportService(payrollRepos, export.NewExcelRegisterWriter(),
		printing.NewPayslipRenderer(pdf, cfg.Payroll.PayslipRenderTimeout, log), log)

	documentRepos := documentapp.Repositories{
		Documents:        documentRepo,
		Comments:         commentRepo,
		ProfileDocuments: profileDocRepo,
		Members:          memberRepo,
		Profiles:         profileRepo,
	}
	documentService := documentapp.NewService(documentRepos, objects, export.NewZIPArchiver(objects, log), db, bus, metrics,
		documentapp.Config{ExportMaxDocuments: cfg.Document.ExportMaxDocuments}, log)
	profileDocService := documentapp.NewProfileService(documentRepos, log)

	taskService := taskapp.NewService(taskRepo, memberRepo, bus, log)
	chatService := chatapp.NewService(chatRepo, memberRepo, bus, hub, log)

	dispatcher := notificationapp.NewDispatcher(deviceRepo, preferenceRepo, newPushSender(ctx, cfg, log), metrics, log)
	countsService := notificationapp.NewCountsService(notificationapp.CountsRepositories{
		LeaveRequests:  leaveRequestRepo,
		Payroll:        payrollRepo,
		PayrollNotices: payrollNoticeRepo,
		Chat:           chatRepo,
		Documents:      documentRepo,
		Tasks:          taskRepo,
	}, documentService, cfg.Chat.PollInterval, log)
	pushHandler := notificationapp.NewPushHandler(dispatcher, log)
	bus.Subscribe(pushHandler, pushHandler.EventTypes()...)

	subscriptionService := billingapp.NewSubscriptionService(orgRepo, newSubscriptionProvider(cfg, log), caches.ValueCache("billing"),
		billingapp.Config{
			GracePeriod:   cfg.Stripe.GracePeriod,
			CheckCacheTTL: cfg.Stripe.CheckCacheTTL,
			EnforceWrites: cfg.Stripe.EnforceWrites,
		}, log)
	webhookService := billingapp.NewWebhookService(cfg.Stripe.WebhookSecret, subscriptionService, orgRepo, log)

	// Background work
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if err := hub.Start(ctx); err != nil {
		log.Fatal("Failed to start realtime hub", zap.Error(err))
	}
	var cron *scheduler.CronTrigger
	if cfg.Scheduler.Enabled {
		runner := jobs.NewRunner(jobs.Services{
			Payroll:     reportService,
			Discussions: documentService,
			Invitations: invitationService,
			Leave:       balanceService,
			Profiles:    profileDocService,
			Roles:       roleRepo,
			Push:        dispatcher,
		}, jobs.Config{
			PayrollReminderAfter:    cfg.Payroll.ReminderAfter,
			PayrollReminderRepeat:   cfg.Payroll.ReminderRepeat,
			DiscussionReminderAfter: cfg.Document.DiscussionReminderAfter,
			ExpiryNoticeDays:        cfg.Document.ExpiryNoticeDays,
		}, log)
		cron = scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			JobTimeout: cfg.Scheduler.JobTimeout,
			Location:   time.UTC,
		}, metrics, log)
		for _, job := range runner.Jobs(jobs.Schedules{
			PayrollReminder:  cfg.Scheduler.PayrollReminderCron,
			DocumentReminder: cfg.Scheduler.DocumentReminderCron,
			InvitationExpiry: cfg.Scheduler.InvitationExpiryCron,
			LeaveYear:        cfg.Scheduler.LeaveYearCron,
			ProfileExpiry:    cfg.Scheduler.ProfileExpiryCron,
		}) {
			if err := cron.Register(job); err != nil {
				log.Fatal("Failed to register job", zap.String("job", job.Name), zap.Error(err))
			}
		}
		if err := cron.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Authorization
	policy, err := authz.LoadPolicy(cfg.Authz.PolicyFile)
	if err != nil {
		log.Fatal("Failed to load authorization policy", zap.Error(err))
	}
	mode, err := authz.ParseMode(cfg.Authz.Mode)
	if err != nil {
		log.Fatal("Invalid authorization mode", zap.Error(err))
	}
	authorizer, err := authz.NewAuthorizer(policy, mode, log)
	if err != nil {
		log.Fatal("Failed to build authorizer", zap.Error(err))
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(metrics))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(
			middleware.NewLocalLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
			middleware.KeyByIP,
		))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	guards := router.Guards{
		Authenticate: []gin.HandlerFunc{
			middleware.JWTAuth(middleware.JWTMiddlewareConfig{
				Tokens:          jwtService,
				Checker:         authService,
				QueryTokenPaths: []string{r.BasePath() + "/ws"},
				Logger:          log,
			}),
			middleware.TenantContext(authService),
			middleware.SubscriptionGuard(subscriptionService, r.BasePath()+"/billing", r.BasePath()+"/auth/logout"),
		},
		Permissions: middleware.NewPermissions(authorizer),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.LoginLimit = middleware.RateLimit(newLoginLimiter(cfg, redisClient), middleware.KeyByIP)
	}
	r.Register(router.API(router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Organization: handler.NewOrganizationHandler(organizationService),
		Member:       handler.NewMemberHandler(memberService),
		Invitation:   handler.NewInvitationHandler(invitationService),
		Account:      handler.NewAccountHandler(accountService),
		Leave:        handler.NewLeaveHandler(leaveTypeService, balanceService, requestService, holidayService),
		Payroll:      handler.NewPayrollHandler(recordService, reportService),
		Document:     handler.NewDocumentHandler(documentService, profileDocService),
		Task:         handler.NewTaskHandler(taskService),
		Chat:         handler.NewChatHandler(chatService, hub),
		Notification: handler.NewNotificationHandler(countsService, dispatcher),
		Billing:      handler.NewBillingHandler(subscriptionService, webhookService),
	}, guards)...).Setup()

	router.System(engine, handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
		"database": db,
		"redis":    caches,
	}))
	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cron != nil {
		if err := cron.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := hub.Stop(shutdownCtx); err != nil {
		log.Error("Realtime hub did not stop cleanly", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}
	log.Info("Server exited")
	if err := logs.Shutdown(shutdownCtx); err != nil {
		log.Error("Log export shutdown failed", zap.Error(err))
	}
}
