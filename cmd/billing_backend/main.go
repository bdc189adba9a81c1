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

	"github.com/SscSPs/billing_dashboard/internal/core/services"
	"github.com/SscSPs/billing_dashboard/internal/handlers"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/SscSPs/billing_dashboard/internal/notify"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
	"github.com/SscSPs/billing_dashboard/internal/remoteauth"
	"github.com/SscSPs/billing_dashboard/internal/repositories"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
)

const shutdownTimeout = 30 * time.Second

// @title Billing Dashboard API
// @version 1.0
// @description Ledger, plan and profile API behind the billing dashboard.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := repositories.NewRepositoryProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if repos.Close == nil {
			return
		}
		if cerr := repos.Close(); cerr != nil {
			logger.Error("Error closing data backend", slog.String("error", cerr.Error()))
		}
	}()

	authenticator, err := newAuthenticator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := notifier.Close(); cerr != nil {
			logger.Error("Error closing notifier", slog.String("error", cerr.Error()))
		}
	}()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	container := services.NewServiceContainer(cfg, repos, authenticator, notifier)

	router, err := newRouter(cfg, logger, container, posthogClient)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("backend", cfg.DataBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newRouter(cfg *config.Config, logger *slog.Logger, container *portssvc.ServiceContainer, posthogClient *utils.PosthogClientWrapper) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendBaseURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.AllowCredentials = true

	// Global middleware (cors, logging, recovery)
	r.Use(cors.New(corsConfig), middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	if err := handlers.RegisterRoutes(r, cfg, container, posthogClient); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	return r, nil
}

func newAuthenticator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portssvc.Authenticator, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderRemote:
		authenticator, err := remoteauth.NewAuthenticator(ctx, cfg.IdentityToolkitAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize identity toolkit: %w", err)
		}
		logger.Info("Using remote authentication provider")
		return authenticator, nil
	default:
		logger.Info("Using local authentication provider")
		return services.NewLocalAuthenticator(), nil
	}
}

// newNotifier always logs notices; a broker from config receives them too.
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}

	switch cfg.Notifier {
	case config.NotifierKafka:
		notifiers = append(notifiers, notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic))
		logger.Info("Publishing notices to Kafka", slog.String("topic", cfg.KafkaTopic))
	case config.NotifierAMQP:
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect notice broker: %w", err)
		}
		notifiers = append(notifiers, amqpNotifier)
		logger.Info("Publishing notices to AMQP", slog.String("exchange", cfg.AMQPExchange))
	}
	return notifiers, nil
}
