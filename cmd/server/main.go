package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/invite-idm/pkg/finalize"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/notification"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/provisioning"
	"github.com/tendant/invite-idm/pkg/router"
	"github.com/tendant/invite-idm/pkg/signin"
	"github.com/tendant/invite-idm/pkg/tokengenerator"
)

type DbConfig struct {
	Host     string `env:"INVITE_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"INVITE_PG_PORT" env-default:"5432"`
	Database string `env:"INVITE_PG_DATABASE" env-default:"invite_db"`
	User     string `env:"INVITE_PG_USER" env-default:"invite"`
	Password string `env:"INVITE_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"INVITE_PG_SCHEMA" env-default:"public"`
}

func (d DbConfig) toDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

type JwtConfig struct {
	Secret        string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer        string `env:"JWT_ISSUER" env-default:"invite-idm"`
	Audience      string `env:"JWT_AUDIENCE" env-default:"invite-idm"`
	SessionExpiry string `env:"SESSION_EXPIRY" env-default:"15m"`
}

type EmailConfig struct {
	Enabled  bool   `env:"EMAIL_ENABLED" env-default:"false"`
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

type InviteConfig struct {
	ExpiryDays  int  `env:"INVITE_EXPIRY_DAYS" env-default:"7"`
	RevealToken bool `env:"INVITE_REVEAL_TOKEN" env-default:"false"`
}

type Config struct {
	DbConfig     DbConfig
	AppConfig    app.AppConfig
	JwtConfig    JwtConfig
	EmailConfig  EmailConfig
	InviteConfig InviteConfig
}

func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}

	execDir := filepath.Dir(execPath)
	envFile := filepath.Join(execDir, ".env")

	// Also check current working directory
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			slog.Error("Failed to load .env file", "file", envFile, "error", err)
		} else {
			slog.Info("Loaded environment from file", "file", envFile)
		}
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbURL := config.DbConfig.toDatabaseURL()
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", config.DbConfig.Database,
			"host", config.DbConfig.Host, "port", config.DbConfig.Port, "user", config.DbConfig.User)
		os.Exit(-1)
	}

	sessionExpiry, err := time.ParseDuration(config.JwtConfig.SessionExpiry)
	if err != nil {
		slog.Error("Invalid SESSION_EXPIRY", "value", config.JwtConfig.SessionExpiry, "error", err)
		os.Exit(-1)
	}

	credentialRepo := identity.NewPostgresCredentialRepository(pool)
	inviteRepo := invite.NewPostgresInviteRepository(pool)
	profileRepo := profile.NewPostgresProfileRepository(pool)

	tokenGen := tokengenerator.NewJwtTokenGenerator(
		config.JwtConfig.Secret,
		config.JwtConfig.Issuer,
		config.JwtConfig.Audience,
	)
	identityProvider := identity.NewLocalProvider(credentialRepo, tokenGen,
		identity.WithSessionExpiry(sessionExpiry))

	notificationOpts := []notification.NotificationManagerOption{
		notification.WithDefaultTemplates(),
	}
	if config.EmailConfig.Enabled {
		notificationOpts = append(notificationOpts, notification.WithSMTP(notification.SMTPConfig{
			Host:     config.EmailConfig.Host,
			Port:     int(config.EmailConfig.Port),
			Username: config.EmailConfig.Username,
			Password: config.EmailConfig.Password,
			From:     config.EmailConfig.From,
			TLS:      config.EmailConfig.TLS,
		}))
	}
	notificationManager, err := notification.NewNotificationManagerWithOptions(notificationOpts...)
	if err != nil {
		slog.Error("Failed to initialize notification manager", "error", err)
		os.Exit(-1)
	}

	provisioningOpts := []provisioning.ProvisioningServiceOption{
		provisioning.WithInviteTTL(time.Duration(config.InviteConfig.ExpiryDays) * 24 * time.Hour),
	}
	if config.EmailConfig.Enabled {
		provisioningOpts = append(provisioningOpts, provisioning.WithNotificationManager(notificationManager))
	}
	if config.InviteConfig.RevealToken {
		slog.Warn("Invitation token reveal is enabled")
		provisioningOpts = append(provisioningOpts, provisioning.WithRevealToken(true))
	}

	provisioningService := provisioning.NewProvisioningService(identityProvider, inviteRepo, profileRepo, provisioningOpts...)
	inviteService := invite.NewInviteService(inviteRepo, profileRepo)
	signInService := signin.NewSignInService(identityProvider, inviteRepo, profileRepo)
	finalizeService := finalize.NewFinalizeService(identityProvider, inviteRepo, profileRepo)
	profileService := profile.NewProfileService(profileRepo, identityProvider)

	router.SetupRoutes(server.R, router.Config{
		ProvisioningHandler: provisioning.NewHandler(provisioningService),
		InviteHandler:       invite.NewHandler(inviteService),
		SignInHandler:       signin.NewHandler(signInService),
		FinalizeHandler:     finalize.NewHandler(finalizeService),
		ProfileHandler:      profile.NewHandler(profileService),
	})

	server.Run()
}
