package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Alpha-Sight/propellantBE/common/id"
	"github.com/Alpha-Sight/propellantBE/common/llm"
	"github.com/Alpha-Sight/propellantBE/common/logger"
	"github.com/Alpha-Sight/propellantBE/common/otel"
	"github.com/Alpha-Sight/propellantBE/core/config"
	"github.com/Alpha-Sight/propellantBE/internal/http/middleware"
	httprouter "github.com/Alpha-Sight/propellantBE/internal/http/router"
	"github.com/Alpha-Sight/propellantBE/internal/queue"
	"github.com/Alpha-Sight/propellantBE/internal/service"
	"github.com/Alpha-Sight/propellantBE/internal/xion"
)

const mockStartingCredits = 100

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses the OTel provider when enabled)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "propellant api starting",
		"env", cfg.Env,
		"credential_mode", cfg.Credentials.Mode,
		"model", cfg.LLM.Model)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	verifier, ledger, err := credentialCollaborators(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up credential collaborators", "error", err)
		os.Exit(1)
	}

	usage, err := usageProducer(ctx, cfg.Usage)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to usage stream", "error", err)
		os.Exit(1)
	}
	defer usage.Close()

	services := service.NewServices(service.ServicesConfig{
		LLM:      llmClient,
		Verifier: verifier,
		Ledger:   ledger,
		Usage:    usage,
		Limits:   service.DefaultValidationLimits(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + cfg.Credentials.Xion.Timeout*2 + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func credentialCollaborators(cfg config.Config) (service.CredentialVerifier, service.CreditLedger, error) {
	switch cfg.Credentials.Mode {
	case config.CredentialModeMock:
		slog.Warn("using mock credential verifier and credit ledger")
		return xion.NewMockVerifier(), xion.NewMockLedger(mockStartingCredits), nil
	case config.CredentialModeXion:
		x := cfg.Credentials.Xion
		client := xion.NewClient(xion.ClientConfig{
			RESTURL:         x.RESTURL,
			ContractAddress: x.ContractAddress,
			Timeout:         x.Timeout,
		})
		ledger := xion.NewRelayerLedger(xion.RelayerConfig{
			URL:             x.RelayerURL,
			APIKey:          x.RelayerAPIKey,
			ContractAddress: x.ContractAddress,
			Timeout:         x.Timeout,
		})
		slog.Info("using xion credential verifier",
			"chain_id", x.ChainID,
			"contract", x.ContractAddress)
		return xion.NewVerifier(client), ledger, nil
	default:
		return nil, nil, fmt.Errorf("unsupported credential mode %q", cfg.Credentials.Mode)
	}
}

func usageProducer(ctx context.Context, cfg config.UsageConfig) (queue.Producer, error) {
	if !cfg.Enabled() {
		return queue.NewNoopProducer(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.RedisStream)

	return queue.NewRedisProducer(client, cfg.RedisStream, slog.Default()), nil
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	return router
}
