package document

import (
	"context"
	"errors"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Approve accepts a pending version (hr+). The approved version it
// replaces, if any, is superseded in the same transaction.
func (s *Service) Approve(ctx context.Context, p identity.Principal, id uuid.UUID) (*document.Document, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	now := s.now()
	var d, prior *document.Document
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.repos.Documents.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if d.IsReplacement() {
			prior, err = s.repos.Documents.FindApproved(ctx, d.RootID)
			if errors.Is(err, shared.ErrNotFound) {
				prior, err = nil, nil
			}
			if err != nil {
				return err
			}
		}
		if err := d.Approve(p.UserID, now); err != nil {
			return err
		}
		if prior != nil {
			if err := prior.Supersede(); err != nil {
				return err
			}
			prior.AddDomainEvent(document.NewDocumentEvent(document.EventTypeDocumentSuperseded, prior, p.UserID, ""))
			if err := s.repos.Documents.Update(ctx, prior); err != nil {
				return err
			}
		}
		if err := s.repos.Documents.Update(ctx, d); err != nil {
			return err
		}
		return s.repos.Comments.Create(ctx, document.NewSystemComment(d, p.UserID, "Approved", now))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, d, prior)
	s.metrics.DocumentReviewed("approved")
	fields := []zap.Field{
		zap.String("document_id", d.ID.String()),
		zap.Int("doc_version", d.DocVersion),
		zap.String("by", p.UserID.String()),
	}
	if prior != nil {
		fields = append(fields, zap.String("superseded_id", prior.ID.String()))
	}
	s.logger.Info("Document approved", fields...)
	return d, nil
}

// Reject declines a pending version with a reason (hr+)
func (s *Service) Reject(ctx context.Context, p identity.Principal, id uuid.UUID, reason string) (*document.Document, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	now := s.now()
	var d *document.Document
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.repos.Documents.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Reject(p.UserID, reason, now); err != nil {
			return err
		}
		if err := s.repos.Documents.Update(ctx, d); err != nil {
			return err
		}
		return s.repos.Comments.Create(ctx, document.NewSystemComment(d, p.UserID, "Rejected: "+d.RejectionReason, now))
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, d)
	s.metrics.DocumentReviewed("rejected")
	s.logger.Info("Document rejected",
		zap.String("document_id", d.ID.String()),
		zap.String("by", p.UserID.String()))
	return d, nil
}

// AddComment posts to a document thread. Only the owner and hr+ may write.
func (s *Service) AddComment(ctx context.Context, p identity.Principal, id uuid.UUID, body string) (*document.Comment, error) {
	d, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	c, err := document.NewUserComment(d, p.UserID, body, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repos.Comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.events.Publish(ctx, document.NewDocumentEvent(document.EventTypeDocumentCommented, d, p.UserID, "")); err != nil {
		s.logger.Warn("Failed to publish comment event", zap.String("document_id", d.ID.String()), zap.Error(err))
	}
	return c, nil
}

// ListComments returns a document thread in creation order
func (s *Service) ListComments(ctx context.Context, p identity.Principal, id uuid.UUID) ([]document.Comment, error) {
	d, err := s.visibleDocument(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.repos.Comments.FindByDocument(ctx, d.ID)
}
