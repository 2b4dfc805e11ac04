package invite

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInviteNotFound = errors.New("invitation not found")
	ErrActiveInvite   = errors.New("an active invitation already exists for email")
)

// InviteRepository defines the interface for invitation persistence.
type InviteRepository interface {
	// CreateInvite creates a new unused invitation. Must refuse a second
	// active invitation for the same email (ErrActiveInvite): at most one
	// invitation with used=false may exist per email at any time.
	CreateInvite(ctx context.Context, params CreateInviteParams) (Invitation, error)
	// GetActiveInviteByEmail returns the invitation with used=false for the email
	GetActiveInviteByEmail(ctx context.Context, email string) (Invitation, error)
	// GetLatestInviteByEmail returns the most recent invitation for the email,
	// used or not
	GetLatestInviteByEmail(ctx context.Context, email string) (Invitation, error)
	// ListInvitesByCompany lists a company's invitations, newest first
	ListInvitesByCompany(ctx context.Context, companyID int32) ([]Invitation, error)
	// ConsumeInviteByEmail flips used false->true for the email's active
	// invitation. Reports false when no active invitation existed; calling
	// it again after consumption is a no-op, never an error.
	ConsumeInviteByEmail(ctx context.Context, email string) (bool, error)
	// DeleteInvite removes an invitation; only used as a provisioning compensation
	DeleteInvite(ctx context.Context, inviteID uuid.UUID) error
}
