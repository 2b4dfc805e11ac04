package finalize

import (
	"context"
	"errors"
	"log/slog"

	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/utils"
)

const minPasswordLength = 6

// FinalizeService completes a first connection: the provisioning
// secret is replaced by a real credential (or confirmed out of band for
// SSO accounts) and the profile leaves the first-connection state.
type FinalizeService struct {
	identityProvider identity.Provider
	inviteRepo       invite.InviteRepository
	profileRepo      profile.ProfileRepository
}

// NewFinalizeService creates a new FinalizeService
func NewFinalizeService(
	identityProvider identity.Provider,
	inviteRepo invite.InviteRepository,
	profileRepo profile.ProfileRepository,
) *FinalizeService {
	return &FinalizeService{
		identityProvider: identityProvider,
		inviteRepo:       inviteRepo,
		profileRepo:      profileRepo,
	}
}

// FinalizePassword replaces the current password with a new one. On a
// first connection the current password is the provisioning secret and
// a successful change also clears the first-connection flag and
// consumes the invitation.
func (s *FinalizeService) FinalizePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	if email == "" || currentPassword == "" || newPassword == "" {
		return idmerr.New(idmerr.ErrCodeMissingRequired, "email, current password and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return idmerr.New(idmerr.ErrCodePasswordTooShort, "password must be at least 6 characters")
	}
	if newPassword == currentPassword {
		return idmerr.New(idmerr.ErrCodePasswordReused, "new password must differ from the current one")
	}

	session, err := s.identityProvider.VerifyCredential(ctx, email, currentPassword)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return idmerr.New(idmerr.ErrCodeInvalidCredentials, "invalid email or password")
		}
		return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to verify credentials")
	}

	if err := s.identityProvider.UpdateCredential(ctx, session.IdentityID, newPassword); err != nil {
		return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to update password")
	}

	slog.Info("Password updated", "email", utils.MaskEmail(email))
	s.leaveFirstConnection(ctx, session, email)
	return nil
}

// FinalizeSSO marks an SSO-backed account as finalized. The identity
// provider already authenticated the user, so there is no credential to
// replace. Calling it on an already finalized account is a no-op.
func (s *FinalizeService) FinalizeSSO(ctx context.Context, email string) error {
	if email == "" {
		return idmerr.New(idmerr.ErrCodeMissingRequired, "email is required")
	}

	ident, err := s.identityProvider.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return idmerr.New(idmerr.ErrCodeNotFound, "no account found for this email")
		}
		return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to look up identity")
	}

	prof, err := s.profileRepo.GetProfileByAuthID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return idmerr.New(idmerr.ErrCodeProfileMissing, "no profile found for this account")
		}
		return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load profile")
	}

	if !prof.FirstConnection {
		return nil
	}

	if err := s.profileRepo.SetFirstConnection(ctx, prof.UserID, false); err != nil {
		return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to finalize account")
	}
	if _, err := s.inviteRepo.ConsumeInviteByEmail(ctx, email); err != nil {
		// sign-in already consumed it in the normal flow; this is a backstop
		slog.Error("Failed to consume invitation during finalization", "email", utils.MaskEmail(email), "err", err)
	}

	slog.Info("SSO account finalized", "user_id", prof.UserID)
	return nil
}

// leaveFirstConnection clears the first-connection state after a
// successful password change. Failures here do not undo the password
// update; they are logged and retried on the next finalization.
func (s *FinalizeService) leaveFirstConnection(ctx context.Context, session identity.Session, email string) {
	prof, err := s.profileRepo.GetProfileByAuthID(ctx, session.IdentityID)
	if err != nil {
		slog.Error("Failed to load profile after password change", "identity_id", session.IdentityID, "err", err)
		return
	}
	if !prof.FirstConnection {
		return
	}
	if err := s.profileRepo.SetFirstConnection(ctx, prof.UserID, false); err != nil {
		slog.Error("Failed to clear first connection", "user_id", prof.UserID, "err", err)
		return
	}
	if _, err := s.inviteRepo.ConsumeInviteByEmail(ctx, email); err != nil {
		slog.Error("Failed to consume invitation during finalization", "email", utils.MaskEmail(email), "err", err)
	}
	slog.Info("First connection finalized", "user_id", prof.UserID)
}
