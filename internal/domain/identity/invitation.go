package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// InvitationStatus represents the state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// ErrInvitationExpired is returned when accepting a lapsed invitation
var ErrInvitationExpired = shared.NewDomainError(shared.CodeInvitationExpired, "Invitation has expired")

// Invitation invites an email address to join an organization with a role.
// Only the SHA-256 of the token is stored.
type Invitation struct {
	shared.TenantAggregateRoot
	Email          string
	Role           Role
	TokenHash      string
	Status         InvitationStatus
	ExpiresAt      time.Time
	InvitedBy      uuid.UUID
	AcceptedAt     *time.Time
	AcceptedUserID *uuid.UUID
}

// NewInvitation creates a pending invitation and returns it with the plaintext token
func NewInvitation(tenantID uuid.UUID, email string, role Role, invitedBy uuid.UUID, ttl time.Duration) (*Invitation, string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if !role.IsValid() {
		return nil, "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+string(role))
	}
	if ttl <= 0 {
		return nil, "", shared.NewDomainError(shared.CodeInvalidInput, "Invitation lifetime must be positive")
	}
	token, err := newToken()
	if err != nil {
		return nil, "", err
	}
	inv := &Invitation{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, invitedBy),
		Email:               normalized,
		Role:                role,
		TokenHash:           HashToken(token),
		Status:              InvitationStatusPending,
		ExpiresAt:           time.Now().Add(ttl),
		InvitedBy:           invitedBy,
	}
	inv.AddDomainEvent(NewInvitationCreatedEvent(inv))
	return inv, token, nil
}

// Reissue rotates the token and extends the expiry of a pending invitation
func (i *Invitation) Reissue(role Role, ttl time.Duration) (string, error) {
	if i.Status != InvitationStatusPending && i.Status != InvitationStatusExpired {
		return "", shared.NewDomainError(shared.CodeInvalidState, "Only pending or expired invitations can be re-issued")
	}
	if !role.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+string(role))
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	i.Role = role
	i.TokenHash = HashToken(token)
	i.Status = InvitationStatusPending
	i.ExpiresAt = time.Now().Add(ttl)
	i.IncrementVersion()
	return token, nil
}

// Accept consumes the invitation for the given user
func (i *Invitation) Accept(userID uuid.UUID, now time.Time) error {
	switch i.Status {
	case InvitationStatusAccepted:
		return shared.NewDomainError(shared.CodeInvalidState, "Invitation has already been accepted")
	case InvitationStatusRevoked:
		return shared.NewDomainError(shared.CodeInvalidState, "Invitation has been revoked")
	case InvitationStatusExpired:
		return ErrInvitationExpired
	}
	if i.IsExpired(now) {
		return ErrInvitationExpired
	}
	i.Status = InvitationStatusAccepted
	i.AcceptedAt = &now
	i.AcceptedUserID = &userID
	i.IncrementVersion()
	return nil
}

// Revoke cancels a pending invitation
func (i *Invitation) Revoke() error {
	if i.Status != InvitationStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, "Only pending invitations can be revoked")
	}
	i.Status = InvitationStatusRevoked
	i.IncrementVersion()
	return nil
}

// Expire marks a lapsed pending invitation as expired. It returns false if nothing changed.
func (i *Invitation) Expire(now time.Time) bool {
	if i.Status != InvitationStatusPending || !i.IsExpired(now) {
		return false
	}
	i.Status = InvitationStatusExpired
	i.IncrementVersion()
	return true
}

// IsExpired reports whether the expiry has passed
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// HashToken returns the hex SHA-256 of an invitation token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate invitation token")
	}
	return hex.EncodeToString(buf), nil
}
