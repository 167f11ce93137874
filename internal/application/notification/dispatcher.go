package notification

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultSendConcurrency = 8

// Notification is one push addressed to a set of users
type Notification struct {
	UserIDs  []uuid.UUID
	Category identity.NotificationCategory
	Title    string
	Body     string
	Data     map[string]string
}

// DispatchResult summarises a dispatch
type DispatchResult struct {
	Recipients int `json:"recipients"`
	OptedOut   int `json:"opted_out"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Removed    int `json:"removed"`
}

// PushInput is the body of the manual push endpoint
type PushInput struct {
	UserIDs []uuid.UUID
	Title   string
	Body    string
	Data    map[string]string
}

// Dispatcher fans a notification out to every device of its recipients
type Dispatcher struct {
	devices     identity.DeviceTokenRepository
	preferences identity.PreferenceRepository
	sender      PushSender
	metrics     *telemetry.Metrics
	concurrency int
	logger      *zap.Logger
}

// NewDispatcher creates a push dispatcher. metrics may be nil.
func NewDispatcher(
	devices identity.DeviceTokenRepository,
	preferences identity.PreferenceRepository,
	sender PushSender,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		devices:     devices,
		preferences: preferences,
		sender:      sender,
		metrics:     metrics,
		concurrency: defaultSendConcurrency,
		logger:      logger,
	}
}

// Dispatch sends n to every registered device of its recipients, honouring
// their category preferences. Tokens the provider reports as unregistered
// are deleted. Individual send failures do not fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (DispatchResult, error) {
	var result DispatchResult
	users := uniqueIDs(n.UserIDs)
	result.Recipients = len(users)
	if len(users) == 0 {
		return result, nil
	}

	prefs, err := d.preferences.FindByUserIDs(ctx, users)
	if err != nil {
		return result, err
	}
	optedOut := make(map[uuid.UUID]bool, len(prefs))
	for _, p := range prefs {
		if !p.Allows(n.Category) {
			optedOut[p.UserID] = true
		}
	}
	allowed := users[:0:0]
	for _, id := range users {
		if optedOut[id] {
			result.OptedOut++
			continue
		}
		allowed = append(allowed, id)
	}
	if len(allowed) == 0 {
		return result, nil
	}

	tokens, err := d.devices.FindByUserIDs(ctx, allowed)
	if err != nil {
		return result, err
	}
	msg := PushMessage{Title: n.Title, Body: n.Body, Data: withCategory(n.Data, n.Category)}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(d.concurrency)
	for _, t := range tokens {
		token := t.Token
		g.Go(func() error {
			err := d.sender.Send(ctx, token, msg)
			removed := false
			if errors.Is(err, ErrTokenUnregistered) {
				if delErr := d.devices.DeleteByToken(ctx, token); delErr != nil {
					d.logger.Warn("Failed to delete unregistered device token", zap.Error(delErr))
				} else {
					removed = true
				}
			} else if err != nil {
				d.logger.Warn("Push delivery failed", zap.Error(err))
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Sent++
			default:
				result.Failed++
			}
			if removed {
				result.Removed++
			}
			return nil
		})
	}
	_ = g.Wait()

	d.metrics.PushResult("sent", result.Sent)
	d.metrics.PushResult("failed", result.Failed)
	d.metrics.PushResult("removed", result.Removed)
	d.logger.Debug("Push dispatched",
		zap.String("category", string(n.Category)),
		zap.Int("recipients", result.Recipients),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result, nil
}

// Push sends an ad hoc notification (admin+)
func (d *Dispatcher) Push(ctx context.Context, p identity.Principal, input PushInput) (DispatchResult, error) {
	if err := p.Require(identity.RoleAdmin); err != nil {
		return DispatchResult{}, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > 200 {
		return DispatchResult{}, shared.NewDomainError(shared.CodeInvalidInput, "Title must be 1-200 characters")
	}
	if len(input.UserIDs) == 0 {
		return DispatchResult{}, shared.NewDomainError(shared.CodeInvalidInput, "At least one recipient is required")
	}
	if len(input.Body) > 2000 {
		return DispatchResult{}, shared.NewDomainError(shared.CodeInvalidInput, "Body cannot exceed 2000 characters")
	}
	result, err := d.Dispatch(ctx, Notification{
		UserIDs:  input.UserIDs,
		Category: identity.CategoryGeneral,
		Title:    title,
		Body:     input.Body,
		Data:     input.Data,
	})
	if err != nil {
		return result, err
	}
	d.logger.Info("Manual push sent",
		zap.String("by", p.UserID.String()),
		zap.Int("recipients", result.Recipients),
		zap.Int("sent", result.Sent))
	return result, nil
}

func withCategory(data map[string]string, category identity.NotificationCategory) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	if category != "" {
		out["category"] = string(category)
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
