package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	service *core.TriageService,
	runner *core.BackgroundRunner,
	oracle core.SemanticClassifier,
	store core.ClassificationStore,
) error {
	defer logger.Sync()

	triageCfg := cfg.GetTriage()
	interval, err := cfg.GetDuration("triage.refresh_interval")
	if err != nil {
		logger.Fatal("Invalid refresh interval", zap.Error(err))
		return err
	}

	if len(triageCfg.Users) == 0 {
		logger.Warn("No users configured; the refresh loop will idle")
	}

	logger.Info("Starting inbox triage service",
		zap.Duration("refresh_interval", interval),
		zap.Int("users", len(triageCfg.Users)),
		zap.String("classification_version", core.ClassificationVersion))

	// Periodic background refresh for every configured user
	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, userID := range triageCfg.Users {
					service.TriggerBackgroundClassification(userID, triageCfg.GapFillCap)
				}
			case <-stopCh:
				return
			}
		}
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")
	close(stopCh)

	// Let in-flight background classification finish
	runner.Wait()

	// Close any resources that need closing
	if closer, ok := oracle.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close semantic oracle", zap.Error(err))
		}
	}
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
