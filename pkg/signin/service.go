package signin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/utils"
)

// SignInService evaluates the sign-in gate. The gate is a fixed chain
// of checks; each failure stops the chain and maps to exactly one error
// code, so a caller learns nothing beyond the first failing check.
type SignInService struct {
	identityProvider identity.Provider
	inviteRepo       invite.InviteRepository
	profileRepo      profile.ProfileRepository
	now              func() time.Time
}

// SignInServiceOption is a functional option for configuring SignInService
type SignInServiceOption func(*SignInService)

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) SignInServiceOption {
	return func(s *SignInService) {
		s.now = now
	}
}

// NewSignInService creates a new SignInService
func NewSignInService(
	identityProvider identity.Provider,
	inviteRepo invite.InviteRepository,
	profileRepo profile.ProfileRepository,
	opts ...SignInServiceOption,
) *SignInService {
	s := &SignInService{
		identityProvider: identityProvider,
		inviteRepo:       inviteRepo,
		profileRepo:      profileRepo,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignInResult is the outcome of a successful pass through the gate.
// When FirstConnection is set the caller must finalize credentials
// before getting the full profile; Profile is withheld and Session is
// scoped to the finalization step.
type SignInResult struct {
	Session         identity.Session `json:"session"`
	FirstConnection bool             `json:"first_connection"`
	Profile         *profile.Profile `json:"profile,omitempty"`
}

// SignIn runs the gate for an email/password pair.
//
// Order matters: the invitation is checked before the credentials so a
// revoked or never-invited email is refused without touching the
// credential store, and an expired invitation is reported as expired
// rather than as a credential failure.
func (s *SignInService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if email == "" || password == "" {
		return nil, idmerr.New(idmerr.ErrCodeMissingRequired, "email and password are required")
	}

	inv, err := s.inviteRepo.GetLatestInviteByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, invite.ErrInviteNotFound) {
			slog.Info("Sign-in refused, no invitation", "email", utils.MaskEmail(email))
			return nil, idmerr.New(idmerr.ErrCodeNotInvited, "no invitation found for this account")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to look up invitation")
	}

	// A used invitation stays valid forever; expiry only applies while
	// the invitation is still pending.
	if !inv.Used && inv.IsExpired(s.now()) {
		slog.Info("Sign-in refused, invitation expired", "email", utils.MaskEmail(email), "expires_at", inv.ExpiresAt)
		return nil, idmerr.New(idmerr.ErrCodeInvitationExpired, "invitation has expired")
	}

	session, err := s.identityProvider.VerifyCredential(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, idmerr.New(idmerr.ErrCodeInvalidCredentials, "invalid email or password")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to verify credentials")
	}

	// First successful sign-in consumes the invitation. The repository
	// update is conditional on used=false, so repeat sign-ins are no-ops
	// and a failed write retries on the next sign-in.
	if !inv.Used {
		if _, err := s.inviteRepo.ConsumeInviteByEmail(ctx, email); err != nil {
			// consuming the invitation is best effort
			slog.Error("Failed to consume invitation", "email", utils.MaskEmail(email), "err", err)
		}
	}

	prof, err := s.profileRepo.GetProfileByAuthID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			slog.Error("Identity has no profile", "identity_id", session.IdentityID)
			return nil, idmerr.New(idmerr.ErrCodeProfileMissing, "no profile found for this account")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load profile")
	}

	if !prof.Active {
		slog.Info("Sign-in refused, account disabled", "user_id", prof.UserID)
		return nil, idmerr.New(idmerr.ErrCodeAccountDisabled, "account is disabled")
	}

	if prof.FirstConnection {
		// Credentials are still the provisioning secret. The caller must
		// finalize before the profile is released.
		return &SignInResult{
			Session:         session,
			FirstConnection: true,
		}, nil
	}

	loginAt := s.now().UTC()
	if err := s.profileRepo.SetLastLogin(ctx, prof.UserID, loginAt); err != nil {
		// recording the timestamp is best effort
		slog.Error("Failed to record last login", "user_id", prof.UserID, "err", err)
	} else {
		prof.LastLoginAt = &loginAt
	}

	return &SignInResult{
		Session: session,
		Profile: &prof,
	}, nil
}
