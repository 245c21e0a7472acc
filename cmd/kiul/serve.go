package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/email"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/llm"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/auth"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/logger"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/observability"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/policy"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/store"
	httpserver "github.com/2014Akamanzi/kiul-app-sub001/internal/transport/http"
)

func serveCmd() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the site API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(policyFile)
		},
	}
	cmd.Flags().StringVar(&policyFile, "policy", "", "rego file replacing the built-in admin policy")
	return cmd
}

func runServe(policyFile string) error {
	// Load configuration
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log := logger.New(cfg)
	log.Info().
		Int("port", cfg.HTTPPort).
		Str("database", cfg.DatabaseURL).
		Str("model", cfg.AssistantModel).
		Str("publications_dir", cfg.PublicationsDir).
		Msg("starting site backend")

	site, err := config.LoadSite(cfg.SiteConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	policyContent := policy.DefaultPolicy
	if policyFile != "" {
		raw, err := os.ReadFile(policyFile)
		if err != nil {
			return fmt.Errorf("failed to read policy: %w", err)
		}
		policyContent = string(raw)
	}
	policyEngine, err := policy.NewEngine(ctx, policyContent)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}
	if cfg.AdminJWTSecret == "" {
		log.Warn().Msg("ADMIN_JWT_SECRET not set, admin API disabled")
	}
	validator := auth.NewValidator(cfg.AdminJWTSecret, policyEngine, cfg.AdminEmails, cfg.AdminEditorEmails, log)

	// Initialize service
	svc := service.New(db, llm.NewLLMClient(cfg, log), email.NewSender(cfg, log), cfg, site, log)

	e := httpserver.NewServer(svc, cfg, log, validator.Middleware())

	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info().Str("addr", cfg.Addr()).Msg("site API started")

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info().Msg("shutting down site backend")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	log.Info().Msg("site backend stopped")
	return nil
}
