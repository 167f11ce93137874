package document

import (
	"context"
	"sort"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListPendingDiscussions returns the threads that wait on someone, longest
// waiting first. HR sees every thread of the organization, everyone else
// only the threads of their own documents.
func (s *Service) ListPendingDiscussions(ctx context.Context, p identity.Principal, mode DiscussionMode) ([]PendingDiscussion, error) {
	docs, threads, err := s.discussedDocuments(ctx, p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PendingDiscussion, 0)
	for _, d := range docs {
		disc := document.InferDiscussion(d.OwnerUserID, threads[d.ID], now)
		if !mode.matches(disc.State) {
			continue
		}
		out = append(out, PendingDiscussion{
			Document:       d,
			State:          disc.State,
			LastCommentAt:  disc.LastCommentAt,
			WaitingSeconds: int64(disc.Waiting / time.Second),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WaitingSeconds > out[j].WaitingSeconds
	})
	return out, nil
}

// CountAwaitingReply counts the threads waiting on the caller: their own
// documents awaiting the employee, plus for hr+ the other documents
// awaiting the admin side.
func (s *Service) CountAwaitingReply(ctx context.Context, p identity.Principal) (int64, error) {
	docs, threads, err := s.discussedDocuments(ctx, p)
	if err != nil {
		return 0, err
	}
	now := s.now()
	reviewer := p.AtLeast(identity.RoleHR)
	var count int64
	for _, d := range docs {
		own := d.OwnerUserID == p.UserID
		disc := document.InferDiscussion(d.OwnerUserID, threads[d.ID], now)
		if (own && disc.AwaitingFor(true)) || (!own && reviewer && disc.AwaitingFor(false)) {
			count++
		}
	}
	return count, nil
}

// discussedDocuments loads the current commented documents the caller can
// see together with their threads
func (s *Service) discussedDocuments(ctx context.Context, p identity.Principal) ([]*document.Document, map[uuid.UUID][]document.Comment, error) {
	filter := document.Filter{
		CurrentOnly:  true,
		WithComments: true,
		PageSize:     shared.MaxPageSize,
		SortBy:       "created_at",
		SortOrder:    "asc",
	}
	if !p.AtLeast(identity.RoleHR) {
		self := p.UserID
		filter.OwnerUserID = &self
	}
	var docs []*document.Document
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := s.repos.Documents.FindAll(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, items...)
		if len(items) == 0 || int64(len(docs)) >= total {
			break
		}
	}
	if len(docs) == 0 {
		return nil, map[uuid.UUID][]document.Comment{}, nil
	}
	ids := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	threads, err := s.repos.Comments.FindByDocuments(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return docs, threads, nil
}

// FindDiscussionReminders scans every organization for threads that have
// waited on the document owner for at least after
func (s *Service) FindDiscussionReminders(ctx context.Context, after time.Duration, limit int) ([]DiscussionReminder, error) {
	now := s.now()
	docs, err := s.repos.Documents.FindCommentedAcrossOrganizations(ctx, now.Add(-s.config.DiscussionLookback), limit)
	if err != nil {
		return nil, err
	}
	var out []DiscussionReminder
	for _, d := range docs {
		docCtx := logger.WithTenantID(ctx, d.TenantID.String())
		thread, err := s.repos.Comments.FindByDocument(docCtx, d.ID)
		if err != nil {
			s.logger.Warn("Failed to load document thread", zap.String("document_id", d.ID.String()), zap.Error(err))
			continue
		}
		disc := document.InferDiscussion(d.OwnerUserID, thread, now)
		if disc.AwaitingFor(true) && disc.Waiting >= after {
			out = append(out, DiscussionReminder{Document: d, Waiting: disc.Waiting})
		}
	}
	s.logger.Info("Document discussion sweep finished",
		zap.Int("scanned", len(docs)),
		zap.Int("awaiting_owner", len(out)))
	return out, nil
}
