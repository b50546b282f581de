package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/api/handler"
	"github.com/bankverify/callsheet/internal/api/router"
	"github.com/bankverify/callsheet/internal/assign"
	config "github.com/bankverify/callsheet/internal/configuration"
	"github.com/bankverify/callsheet/internal/identity"
	"github.com/bankverify/callsheet/internal/letter"
	"github.com/bankverify/callsheet/internal/logging"
	"github.com/bankverify/callsheet/internal/repository"
	"github.com/bankverify/callsheet/internal/session"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Record store client
	repo := repository.NewSheetRepository(cfg.Sheet.BaseURL, cfg.Sheet.Timeout)

	// Identity holder
	identities := identity.NewStore(cfg.Identity.File)

	// Assignment selection and caller sessions
	selector := assign.NewSelector(repo, logger)
	sessions := session.NewManager(repo, selector, cfg.Session.SettlingDelay, logger)

	// Letter/QR generation
	generator := letter.NewGenerator(letter.Sender{
		Name:         cfg.Letters.SenderName,
		Organization: cfg.Letters.SenderOrganization,
		AddressLines: cfg.Letters.SenderAddressLines,
	}, logger)

	// Initialize handlers
	callHandler := handler.NewCallHandler(identities, sessions, logger)
	letterHandler := handler.NewLetterHandler(repo, generator, cfg.Letters.OutputDir, logger)

	// Setup routes
	app := router.SetupRoutes(callHandler, letterHandler, logger)

	// Start server in a goroutine so we can handle graceful shutdown
	go func() {
		logger.Info("starting server", zap.String("address", cfg.Server.Address))
		if err := app.Listen(cfg.Server.Address); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Provide a timeout context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
