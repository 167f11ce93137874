package document

import (
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeDocument is the aggregate type for stored documents
const AggregateTypeDocument = "Document"

// Document domain event types
const (
	EventTypeDocumentUploaded   = "DocumentUploaded"
	EventTypeDocumentApproved   = "DocumentApproved"
	EventTypeDocumentRejected   = "DocumentRejected"
	EventTypeDocumentCommented  = "DocumentCommented"
	EventTypeDocumentSuperseded = "DocumentSuperseded"
)

// DocumentEvent carries a document workflow step
type DocumentEvent struct {
	shared.BaseDomainEvent
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	Title       string    `json:"title"`
	Version     int       `json:"version"`
	Status      Status    `json:"status"`
	Note        string    `json:"note,omitempty"`
}

// NewDocumentEvent creates a document event of the given type
func NewDocumentEvent(eventType string, d *Document, actor uuid.UUID, note string) *DocumentEvent {
	return &DocumentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDocument, d.ID, d.TenantID),
		OwnerUserID:     d.OwnerUserID,
		ActorID:         actor,
		Title:           d.Title,
		Version:         d.DocVersion,
		Status:          d.Status,
		Note:            note,
	}
}
