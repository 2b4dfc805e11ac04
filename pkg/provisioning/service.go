package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/notification"
	"github.com/tendant/invite-idm/pkg/profile"
)

const defaultInviteTTL = 7 * 24 * time.Hour

// ProvisioningService owns the create-time consistency of the
// invitation / identity / profile triple. No other component creates
// these entities.
type ProvisioningService struct {
	identityProvider    identity.Provider
	inviteRepo          invite.InviteRepository
	profileRepo         profile.ProfileRepository
	notificationManager *notification.NotificationManager
	inviteTTL           time.Duration
	revealToken         bool
}

// ProvisioningServiceOption is a functional option for configuring ProvisioningService
type ProvisioningServiceOption func(*ProvisioningService)

// WithInviteTTL sets how long a new invitation stays valid
func WithInviteTTL(ttl time.Duration) ProvisioningServiceOption {
	return func(s *ProvisioningService) {
		s.inviteTTL = ttl
	}
}

// WithNotificationManager enables invitation email delivery
func WithNotificationManager(nm *notification.NotificationManager) ProvisioningServiceOption {
	return func(s *ProvisioningService) {
		s.notificationManager = nm
	}
}

// WithRevealToken includes the one-time provisioning secret in the
// create-invitation result. Admin-only capability; every exposure is
// logged. Off by default.
func WithRevealToken(reveal bool) ProvisioningServiceOption {
	return func(s *ProvisioningService) {
		s.revealToken = reveal
	}
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(
	identityProvider identity.Provider,
	inviteRepo invite.InviteRepository,
	profileRepo profile.ProfileRepository,
	opts ...ProvisioningServiceOption,
) *ProvisioningService {
	s := &ProvisioningService{
		identityProvider: identityProvider,
		inviteRepo:       inviteRepo,
		profileRepo:      profileRepo,
		inviteTTL:        defaultInviteTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvitationRequest carries a create-invitation call.
type CreateInvitationRequest struct {
	RequesterID uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	CompanyID   int32
	Role        profile.Role
}

// CreateInvitationResult is the outcome of a successful provisioning.
// Token is set only when the service is configured to reveal it.
type CreateInvitationResult struct {
	Invitation invite.Invitation
	Profile    profile.Profile
	AuthUserID uuid.UUID
	Token      string
}

// CreateInvitation runs the provisioning saga: all preconditions are
// checked before any mutation, then identity, invitation and profile
// are created in that order with compensating deletes on failure. The
// caller never observes a partially provisioned triple.
func (s *ProvisioningService) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (*CreateInvitationResult, error) {
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return nil, idmerr.New(idmerr.ErrCodeMissingRequired, "email, first name and last name are required")
	}

	// Preconditions, checked in order; nothing is mutated until all pass.
	admin, err := s.profileRepo.GetProfileByUserID(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, idmerr.New(idmerr.ErrCodeAdminNotFound, "admin not found")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load admin profile")
	}

	if !admin.Role.IsAdmin() {
		return nil, idmerr.New(idmerr.ErrCodeInsufficientPermission, "insufficient permissions")
	}

	if admin.CompanyID != req.CompanyID {
		return nil, idmerr.New(idmerr.ErrCodeForbiddenCrossTenant, "admin can only invite into their own company")
	}

	if _, err := s.profileRepo.GetProfileByEmail(ctx, req.Email); err == nil {
		return nil, idmerr.New(idmerr.ErrCodeEmailExists, "a user with this email already exists")
	} else if !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to check existing profile")
	}

	if _, err := s.identityProvider.GetIdentityByEmail(ctx, req.Email); err == nil {
		return nil, idmerr.New(idmerr.ErrCodeEmailExists, "an identity with this email already exists")
	} else if !errors.Is(err, identity.ErrIdentityNotFound) {
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to check existing identity")
	}

	if _, err := s.inviteRepo.GetActiveInviteByEmail(ctx, req.Email); err == nil {
		return nil, idmerr.New(idmerr.ErrCodeInvitationExists, "an invitation already exists for this email")
	} else if !errors.Is(err, invite.ErrInviteNotFound) {
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to check existing invitation")
	}

	// Single-use provisioning secret, also the identity's initial password.
	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(s.inviteTTL)

	role := req.Role
	if role == "" {
		role = profile.RoleUser
	}

	var createdIdentity identity.Identity
	var createdInvite invite.Invitation
	var createdProfile profile.Profile

	saga := NewSaga().
		AddStep(Step{
			Name: "create-identity",
			Action: func(ctx context.Context) error {
				created, err := s.identityProvider.CreateIdentity(ctx, identity.CreateIdentityParams{
					Email:          req.Email,
					Password:       token,
					EmailConfirmed: true,
					Metadata: identity.Metadata{
						FirstName:       req.FirstName,
						LastName:        req.LastName,
						CompanyID:       req.CompanyID,
						FirstConnection: true,
					},
				})
				if err != nil {
					if errors.Is(err, identity.ErrEmailExists) {
						// the pre-check lost a race; the provider's
						// uniqueness constraint is the backstop
						return idmerr.New(idmerr.ErrCodeEmailExists, "an identity with this email already exists")
					}
					return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to create identity")
				}
				createdIdentity = created
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.identityProvider.DeleteIdentity(ctx, createdIdentity.ID)
			},
		}).
		AddStep(Step{
			Name: "create-invitation",
			Action: func(ctx context.Context) error {
				created, err := s.inviteRepo.CreateInvite(ctx, invite.CreateInviteParams{
					Email:     req.Email,
					FirstName: req.FirstName,
					LastName:  req.LastName,
					CompanyID: req.CompanyID,
					Token:     token,
					ExpiresAt: &expiresAt,
				})
				if err != nil {
					if errors.Is(err, invite.ErrActiveInvite) {
						return idmerr.New(idmerr.ErrCodeInvitationExists, "an invitation already exists for this email")
					}
					return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to create invitation")
				}
				createdInvite = created
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.inviteRepo.DeleteInvite(ctx, createdInvite.InviteID)
			},
		}).
		AddStep(Step{
			Name: "create-profile",
			Action: func(ctx context.Context) error {
				created, err := s.profileRepo.CreateProfile(ctx, profile.CreateProfileParams{
					AuthID:          createdIdentity.ID,
					Email:           req.Email,
					FirstName:       req.FirstName,
					LastName:        req.LastName,
					CompanyID:       req.CompanyID,
					Role:            role,
					FirstConnection: true,
					Active:          true,
				})
				if err != nil {
					return idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to create user profile")
				}
				createdProfile = created
				return nil
			},
		})

	if err := saga.Execute(ctx); err != nil {
		var compErr *CompensationError
		if errors.As(err, &compErr) {
			return nil, idmerr.Wrapf(err, idmerr.ErrCodeCompensationFailed,
				"provisioning failed and cleanup is incomplete, manual repair required for %v", compErr.FailedSteps)
		}
		return nil, err
	}

	slog.Info("Invitation provisioned", "email", req.Email, "invite_id", createdInvite.InviteID,
		"auth_id", createdIdentity.ID, "user_id", createdProfile.UserID, "expires_at", expiresAt)

	s.sendInvitationEmail(req, expiresAt)

	result := &CreateInvitationResult{
		Invitation: createdInvite,
		Profile:    createdProfile,
		AuthUserID: createdIdentity.ID,
	}
	if s.revealToken {
		slog.Warn("Provisioning token revealed to inviter", "email", req.Email, "admin_id", req.RequesterID)
		result.Token = token
	}
	return result, nil
}

// sendInvitationEmail delivers the invitation notice, best effort.
// Provisioning already committed; a delivery failure is only logged.
func (s *ProvisioningService) sendInvitationEmail(req CreateInvitationRequest, expiresAt time.Time) {
	if s.notificationManager == nil {
		return
	}
	err := s.notificationManager.Send(notification.InvitationNotice, notification.EmailSystem, notification.NotificationData{
		To: req.Email,
		Data: map[string]string{
			"FirstName": req.FirstName,
			"ExpiresAt": expiresAt.Format(time.RFC1123),
		},
	})
	if err != nil {
		slog.Error("Failed to send invitation email", "email", req.Email, "err", err)
	}
}
