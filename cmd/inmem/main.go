// Package main runs the invitation service without a database using
// in-memory repositories. Useful for development, demos and learning
// the API; all data is lost when the server stops.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/tendant/chi-demo/app"

	"github.com/tendant/invite-idm/pkg/finalize"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/provisioning"
	"github.com/tendant/invite-idm/pkg/router"
	"github.com/tendant/invite-idm/pkg/signin"
	"github.com/tendant/invite-idm/pkg/tokengenerator"
)

const (
	jwtSecret     = "inmem-dev-secret-change-in-production"
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
	adminCompany  = int32(1)
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting in-memory invitation service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	credentialRepo := identity.NewInMemoryCredentialRepository()
	inviteRepo := invite.NewInMemoryInviteRepository()
	profileRepo := profile.NewInMemoryProfileRepository()

	tokenGen := tokengenerator.NewJwtTokenGenerator(jwtSecret, "invite-idm", "invite-idm")
	identityProvider := identity.NewLocalProvider(credentialRepo, tokenGen)

	seedBootstrapAdmin(identityProvider, inviteRepo, profileRepo)

	provisioningService := provisioning.NewProvisioningService(identityProvider, inviteRepo, profileRepo,
		provisioning.WithRevealToken(true))
	inviteService := invite.NewInviteService(inviteRepo, profileRepo)
	signInService := signin.NewSignInService(identityProvider, inviteRepo, profileRepo)
	finalizeService := finalize.NewFinalizeService(identityProvider, inviteRepo, profileRepo)
	profileService := profile.NewProfileService(profileRepo, identityProvider)

	appConfig := app.DefaultAppConfig()
	appConfig.Port = 4000
	server := app.NewApp(
		app.WithAppConfig(appConfig),
		app.WithCors(app.DefaultCorsOptions()),
		app.WithReqLogger(app.DefaultHttpLogger()),
	)
	app.RoutesHealthz(server.R)

	router.SetupRoutes(server.R, router.Config{
		ProvisioningHandler: provisioning.NewHandler(provisioningService),
		InviteHandler:       invite.NewHandler(inviteService),
		SignInHandler:       signin.NewHandler(signInService),
		FinalizeHandler:     finalize.NewHandler(finalizeService),
		ProfileHandler:      profile.NewHandler(profileService),
	})

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-memory invitation service ready")
	slog.Info("")
	slog.Info("Bootstrap admin credentials:")
	slog.Info("  Email:    " + adminEmail)
	slog.Info("  Password: " + adminPassword)
	slog.Info("")
	slog.Info("API endpoints:")
	slog.Info("  POST /api/create-invitation  - Provision a new user (admin)")
	slog.Info("  POST /api/check-invitation   - Pre-login invitation check")
	slog.Info("  POST /api/list-invitations   - List invitations (admin)")
	slog.Info("  POST /api/sign-in            - Sign in")
	slog.Info("  POST /api/change-password    - Change password / finalize")
	slog.Info("  POST /api/confirm-sso        - Finalize an SSO account")
	slog.Info("  POST /api/migrate-profiles   - Backfill legacy profiles (admin)")

	server.Run()
}

// seedBootstrapAdmin creates the initial admin so the first
// create-invitation call has a requester. The admin's own invitation
// is seeded already consumed so the sign-in gate admits it.
func seedBootstrapAdmin(
	identityProvider identity.Provider,
	inviteRepo invite.InviteRepository,
	profileRepo profile.ProfileRepository,
) {
	ctx := context.Background()

	ident, err := identityProvider.CreateIdentity(ctx, identity.CreateIdentityParams{
		Email:          adminEmail,
		Password:       adminPassword,
		EmailConfirmed: true,
		Metadata: identity.Metadata{
			FirstName: "Bootstrap",
			LastName:  "Admin",
			CompanyID: adminCompany,
		},
	})
	if err != nil {
		slog.Error("Failed to seed admin identity", "err", err)
		os.Exit(-1)
	}

	if _, err := inviteRepo.CreateInvite(ctx, invite.CreateInviteParams{
		Email:     adminEmail,
		FirstName: "Bootstrap",
		LastName:  "Admin",
		CompanyID: adminCompany,
		Token:     adminPassword,
	}); err != nil {
		slog.Error("Failed to seed admin invitation", "err", err)
		os.Exit(-1)
	}
	if _, err := inviteRepo.ConsumeInviteByEmail(ctx, adminEmail); err != nil {
		slog.Error("Failed to consume seeded admin invitation", "err", err)
		os.Exit(-1)
	}

	if _, err := profileRepo.CreateProfile(ctx, profile.CreateProfileParams{
		AuthID:    ident.ID,
		Email:     adminEmail,
		FirstName: "Bootstrap",
		LastName:  "Admin",
		CompanyID: adminCompany,
		Role:      profile.RoleAdmin,
		Active:    true,
	}); err != nil {
		slog.Error("Failed to seed admin profile", "err", err)
		os.Exit(-1)
	}

	slog.Info("Seeded bootstrap admin", "email", adminEmail, "company_id", adminCompany)
}
