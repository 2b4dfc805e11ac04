package invite

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/profile"
)

// InviteService answers invitation queries and owns the consumption
// side effect. Creation belongs exclusively to pkg/provisioning.
type InviteService struct {
	inviteRepo  InviteRepository
	profileRepo profile.ProfileRepository
}

// NewInviteService creates a new InviteService
func NewInviteService(inviteRepo InviteRepository, profileRepo profile.ProfileRepository) *InviteService {
	return &InviteService{
		inviteRepo:  inviteRepo,
		profileRepo: profileRepo,
	}
}

// CheckResult is the answer to a pre-login invitation check. Invalid
// outcomes carry a message instead of an error: the check endpoint
// always answers 200 so the login page cannot be used to probe emails.
type CheckResult struct {
	Valid           bool        `json:"valid"`
	FirstConnection bool        `json:"firstConnection,omitempty"`
	Invitation      *Invitation `json:"invite,omitempty"`
	Message         string      `json:"message,omitempty"`
}

// InvitationView is an invitation as shown to an administrator, with
// its computed status. The provisioning token is never included.
type InvitationView struct {
	InviteID  uuid.UUID  `json:"invite_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	InvitedAt time.Time  `json:"invited_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Used      bool       `json:"used"`
	Status    Status     `json:"status"`
}

// CheckInvitation reports whether a live invitation exists for the email
// and whether the account still awaits credential finalization.
func (s *InviteService) CheckInvitation(ctx context.Context, email string) (CheckResult, error) {
	inv, err := s.inviteRepo.GetActiveInviteByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return CheckResult{Valid: false, Message: "no valid invitation found for this email"}, nil
		}
		return CheckResult{}, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to look up invitation")
	}

	if inv.IsExpired(time.Now().UTC()) {
		return CheckResult{Valid: false, Message: "invitation has expired"}, nil
	}

	p, err := s.profileRepo.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return CheckResult{Valid: false, Message: "user not found"}, nil
		}
		return CheckResult{}, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load profile")
	}

	return CheckResult{
		Valid:           true,
		FirstConnection: p.FirstConnection,
		Invitation:      &inv,
	}, nil
}

// ListInvitations returns a company's invitations for an administrator.
// The requester must be an Admin or Superadmin of the same company.
func (s *InviteService) ListInvitations(ctx context.Context, requesterID uuid.UUID, companyID int32) ([]InvitationView, error) {
	admin, err := s.profileRepo.GetProfileByUserID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, idmerr.New(idmerr.ErrCodeAdminNotFound, "admin not found")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load admin profile")
	}

	if !admin.Role.IsAdmin() {
		return nil, idmerr.New(idmerr.ErrCodeInsufficientPermission, "insufficient permissions")
	}

	if admin.CompanyID != companyID {
		return nil, idmerr.New(idmerr.ErrCodeForbiddenCrossTenant, "admin can only view invitations of their own company")
	}

	invites, err := s.inviteRepo.ListInvitesByCompany(ctx, companyID)
	if err != nil {
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to list invitations")
	}

	now := time.Now().UTC()
	views := make([]InvitationView, 0, len(invites))
	for _, inv := range invites {
		view := InvitationView{}
		copier.Copy(&view, &inv)
		view.Status = inv.StatusAt(now)
		views = append(views, view)
	}
	return views, nil
}

// ConsumeActiveByEmail marks the email's active invitation used.
// Safe to call when none is active; the repository update is
// conditional on used=false so double consumption cannot happen.
func (s *InviteService) ConsumeActiveByEmail(ctx context.Context, email string) (bool, error) {
	consumed, err := s.inviteRepo.ConsumeInviteByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if consumed {
		slog.Info("Invitation consumed", "email", email)
	}
	return consumed, nil
}
