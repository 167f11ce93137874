package document

import (
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// ProfileDocumentKind is the kind of identity document held on a profile
type ProfileDocumentKind string

const (
	ProfileDocumentPassport   ProfileDocumentKind = "passport"
	ProfileDocumentVisa       ProfileDocumentKind = "visa"
	ProfileDocumentIDCard     ProfileDocumentKind = "id_card"
	ProfileDocumentWorkPermit ProfileDocumentKind = "work_permit"
	ProfileDocumentLicence    ProfileDocumentKind = "licence"
	ProfileDocumentOther      ProfileDocumentKind = "other"
)

// IsValid reports whether the kind is known
func (k ProfileDocumentKind) IsValid() bool {
	switch k {
	case ProfileDocumentPassport, ProfileDocumentVisa, ProfileDocumentIDCard,
		ProfileDocumentWorkPermit, ProfileDocumentLicence, ProfileDocumentOther:
		return true
	}
	return false
}

// ProfileDocument tracks an identity document and its validity dates
type ProfileDocument struct {
	shared.TenantAggregateRoot
	UserID     uuid.UUID
	Kind       ProfileDocumentKind
	Number     string
	IssuedOn   *time.Time
	ExpiresOn  *time.Time
	DocumentID *uuid.UUID
	Notes      string
}

// ProfileDocumentInput holds the mutable fields of a profile document
type ProfileDocumentInput struct {
	Kind       ProfileDocumentKind
	Number     string
	IssuedOn   *time.Time
	ExpiresOn  *time.Time
	DocumentID *uuid.UUID
	Notes      string
}

// NewProfileDocument creates a profile document for a user
func NewProfileDocument(tenantID, userID, createdBy uuid.UUID, in ProfileDocumentInput) (*ProfileDocument, error) {
	p := &ProfileDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		UserID:              userID,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the mutable fields
func (p *ProfileDocument) Update(in ProfileDocumentInput) error {
	if err := p.apply(in); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *ProfileDocument) apply(in ProfileDocumentInput) error {
	if !in.Kind.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid profile document kind")
	}
	number := strings.TrimSpace(in.Number)
	if len(number) > 100 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Document number cannot exceed 100 characters")
	}
	var issued, expires *time.Time
	if in.IssuedOn != nil {
		d := shared.DateOnly(*in.IssuedOn)
		issued = &d
	}
	if in.ExpiresOn != nil {
		d := shared.DateOnly(*in.ExpiresOn)
		expires = &d
	}
	if issued != nil && expires != nil && expires.Before(*issued) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Expiry date cannot be before issue date")
	}
	p.Kind = in.Kind
	p.Number = number
	p.IssuedOn = issued
	p.ExpiresOn = expires
	p.DocumentID = in.DocumentID
	p.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// IsExpired reports whether the document expired before today
func (p *ProfileDocument) IsExpired(now time.Time) bool {
	return p.ExpiresOn != nil && p.ExpiresOn.Before(shared.DateOnly(now))
}

// ExpiresWithin reports whether the expiry falls between today and today+days
func (p *ProfileDocument) ExpiresWithin(now time.Time, days int) bool {
	if p.ExpiresOn == nil {
		return false
	}
	today := shared.DateOnly(now)
	limit := today.AddDate(0, 0, days)
	return !p.ExpiresOn.Before(today) && !p.ExpiresOn.After(limit)
}
