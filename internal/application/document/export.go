package document

import (
	"context"
	"fmt"
	"io"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportZIP streams the selected current versions into a ZIP archive.
// Employees can only export their own documents.
func (s *Service) ExportZIP(ctx context.Context, p identity.Principal, input ExportInput, w io.Writer) (*ExportResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid document category")
	}
	entries, err := s.ExportEntries(ctx, p, input)
	if err != nil {
		return nil, err
	}
	written, err := s.archive.WriteArchive(ctx, w, entries)
	if err != nil {
		s.logger.Error("Document export failed", zap.Int("selected", len(entries)), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Documents exported",
		zap.Int("selected", len(entries)),
		zap.Int("written", written))
	return &ExportResult{Selected: len(entries), Written: written}, nil
}

// ExportEntries resolves the archive entries of an export without writing
// it, so callers can reject an oversized export before streaming starts
func (s *Service) ExportEntries(ctx context.Context, p identity.Principal, input ExportInput) ([]ArchiveEntry, error) {
	statuses := []document.Status{document.StatusPendingReview, document.StatusApproved, document.StatusRejected}
	if input.ApprovedOnly {
		statuses = []document.Status{document.StatusApproved}
	}
	filter := document.Filter{
		OwnerMemberID: input.OwnerMemberID,
		Category:      input.Category,
		Statuses:      statuses,
		CurrentOnly:   true,
		PageSize:      shared.MaxPageSize,
		SortBy:        "created_at",
		SortOrder:     "asc",
	}
	if !p.AtLeast(identity.RoleHR) {
		self := p.UserID
		filter.OwnerUserID = &self
		filter.OwnerMemberID = nil
	}

	var docs []*document.Document
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := s.repos.Documents.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		if total > int64(s.config.ExportMaxDocuments) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Export is limited to %d documents, narrow the filter", s.config.ExportMaxDocuments))
		}
		docs = append(docs, items...)
		if len(items) == 0 || int64(len(docs)) >= total {
			break
		}
	}

	numbers, err := s.employeeNumbers(ctx, docs)
	if err != nil {
		return nil, err
	}
	entries := make([]ArchiveEntry, 0, len(docs))
	for _, d := range docs {
		modified := d.CreatedAt
		if d.UploadedAt != nil {
			modified = *d.UploadedAt
		}
		entries = append(entries, ArchiveEntry{
			Name:       d.ArchiveEntryName(numbers[d.OwnerMemberID]),
			StorageKey: d.StorageKey,
			Modified:   modified,
		})
	}
	return entries, nil
}

func (s *Service) employeeNumbers(ctx context.Context, docs []*document.Document) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool, len(docs))
	ids := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		if !seen[d.OwnerMemberID] {
			seen[d.OwnerMemberID] = true
			ids = append(ids, d.OwnerMemberID)
		}
	}
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	members, err := s.repos.Members.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.ID] = m.EmployeeNumber
	}
	return out, nil
}
