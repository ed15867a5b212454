package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/cronoplan/cronoplan-api/internal/auth"
	"github.com/cronoplan/cronoplan-api/internal/config"
	"github.com/cronoplan/cronoplan-api/internal/profile"
	"github.com/cronoplan/cronoplan-api/internal/provider/google"
	"github.com/cronoplan/cronoplan-api/internal/provider/local"
	"github.com/cronoplan/cronoplan-api/internal/provider/supabase"
	"github.com/cronoplan/cronoplan-api/internal/server"
)

func main() {
	godotenv.Load()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := auth.DefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := profile.EnsureSchema(ctx, db); err != nil {
		return err
	}

	profiles := profile.NewRepository(db)

	tokens, err := auth.NewTokenService([]byte(cfg.SigningSecret), cfg.SigningAlgorithm)
	if err != nil {
		return err
	}

	issuer, err := auth.NewPairIssuer(tokens, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	reconciler := auth.NewReconciler(profiles,
		auth.WithReconcilerAttempts(cfg.ReconcileAttempts),
		auth.WithReconcilerBaseDelay(cfg.ReconcileBaseDelay),
		auth.WithReconcilerLogger(logger),
	)

	verifier, err := credentialVerifier(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	auther := auth.NewAuther(verifier, reconciler, issuer, profiles).WithLogger(logger)

	if cfg.GoogleClientID != "" {
		googleVerifier, err := google.New(ctx, cfg.GoogleClientID)
		if err != nil {
			return err
		}
		defer googleVerifier.Close()
		auther.WithProviderTokenVerifier(googleVerifier)
	}

	gate := auth.NewTokenGate(tokens, profiles).WithLogger(logger)

	app := server.New(auther, gate, server.Options{
		AppName:     cfg.ProjectName,
		CORSOrigins: cfg.CORSOrigins,
		Debug:       cfg.Debug,
		Logger:      logger,
	})

	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	logger.Info("listening on %s", cfg.HTTPAddr)

	return app.Listen(cfg.HTTPAddr)
}

// credentialVerifier picks the identity backend: Supabase when configured,
// otherwise the in-process development provider.
func credentialVerifier(ctx context.Context, cfg *config.Config, db *bun.DB, logger auth.Logger) (auth.CredentialVerifier, error) {
	if cfg.SupabaseURL != "" {
		return supabase.New(supabase.Config{
			ProjectURL: cfg.SupabaseURL,
			AnonKey:    cfg.SupabaseAnonKey,
			Logger:     logger,
		})
	}

	logger.Warn("SUPABASE_URL not set, using local credential store")

	provider := local.New(db)
	if err := provider.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return provider, nil
}
