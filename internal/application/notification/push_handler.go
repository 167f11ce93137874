package notification

import (
	"context"
	"fmt"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/chat"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/payroll"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/task"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PushHandler turns domain events into push notifications
type PushHandler struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewPushHandler creates the event handler
func NewPushHandler(dispatcher *Dispatcher, logger *zap.Logger) *PushHandler {
	return &PushHandler{dispatcher: dispatcher, logger: logger}
}

// EventTypes returns the events that produce a push
func (h *PushHandler) EventTypes() []string {
	return []string{
		payroll.EventTypePayrollSentToEmployee,
		payroll.EventTypePayrollDisputeResolved,
		leave.EventTypeLeaveRequestApproved,
		leave.EventTypeLeaveRequestRejected,
		task.EventTypeTaskAssigned,
		chat.EventTypeMessageSent,
		document.EventTypeDocumentApproved,
		document.EventTypeDocumentRejected,
	}
}

// Handle builds the notification for the event and dispatches it
func (h *PushHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, ok := h.notificationFor(event)
	if !ok {
		return nil
	}
	ctx = logger.WithTenantID(ctx, event.TenantID().String())
	if _, err := h.dispatcher.Dispatch(ctx, n); err != nil {
		h.logger.Warn("Failed to dispatch push for event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

func (h *PushHandler) notificationFor(event shared.DomainEvent) (Notification, bool) {
	data := map[string]string{
		"event":        event.EventType(),
		"aggregate_id": event.AggregateID().String(),
	}
	switch e := event.(type) {
	case *payroll.PayrollEvent:
		n := Notification{UserIDs: []uuid.UUID{e.EmployeeUserID}, Category: identity.CategoryPayroll, Data: data}
		switch e.EventType() {
		case payroll.EventTypePayrollSentToEmployee:
			n.Title = "Payslip ready"
			n.Body = fmt.Sprintf("Your payslip for %s is ready. Please review and confirm.", e.Period)
		case payroll.EventTypePayrollDisputeResolved:
			n.Title = "Payroll dispute resolved"
			n.Body = fmt.Sprintf("Your dispute for %s has been resolved.", e.Period)
		default:
			return Notification{}, false
		}
		return n, true
	case *leave.LeaveRequestDecidedEvent:
		n := Notification{UserIDs: []uuid.UUID{e.RequesterUserID}, Category: identity.CategoryLeave, Data: data}
		switch e.EventType() {
		case leave.EventTypeLeaveRequestApproved:
			n.Title = "Leave approved"
			n.Body = fmt.Sprintf("Your leave from %s to %s was approved.", e.StartDate, e.EndDate)
		case leave.EventTypeLeaveRequestRejected:
			n.Title = "Leave rejected"
			n.Body = fmt.Sprintf("Your leave from %s to %s was rejected.", e.StartDate, e.EndDate)
		default:
			return Notification{}, false
		}
		return n, true
	case *task.TaskEvent:
		if e.EventType() != task.EventTypeTaskAssigned {
			return Notification{}, false
		}
		return Notification{
			UserIDs:  []uuid.UUID{e.AssigneeUserID},
			Category: identity.CategoryTasks,
			Title:    "New task",
			Body:     e.Title,
			Data:     data,
		}, true
	case *chat.MessageEvent:
		if e.EventType() != chat.EventTypeMessageSent || e.Deleted {
			return Notification{}, false
		}
		data["sender_user_id"] = e.SenderUserID.String()
		return Notification{
			UserIDs:  []uuid.UUID{e.RecipientUserID},
			Category: identity.CategoryChat,
			Title:    "New message",
			Body:     e.Preview,
			Data:     data,
		}, true
	case *document.DocumentEvent:
		n := Notification{UserIDs: []uuid.UUID{e.OwnerUserID}, Category: identity.CategoryDocument, Data: data}
		switch e.EventType() {
		case document.EventTypeDocumentApproved:
			n.Title = "Document approved"
			n.Body = e.Title
		case document.EventTypeDocumentRejected:
			n.Title = "Document rejected"
			n.Body = e.Title
			if e.Note != "" {
				n.Body = e.Title + ": " + e.Note
			}
		default:
			return Notification{}, false
		}
		return n, true
	}
	return Notification{}, false
}

var _ shared.EventHandler = (*PushHandler)(nil)
