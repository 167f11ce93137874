package identity

import (
	"context"
	"time"
)

// InvitationEmail is the content of an invitation message
type InvitationEmail struct {
	To               string
	OrganizationName string
	InviterName      string
	Role             string
	AcceptURL        string
	ExpiresAt        time.Time
}

// InvitationMailer delivers invitation emails
type InvitationMailer interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
}

// AvatarStorage issues presigned URLs for avatar images
type AvatarStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
