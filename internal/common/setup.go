package common

import (
	"context"
	"log"
	"strings"

	"trustio-wallet-go/internal/directory"
	"trustio-wallet-go/internal/ledger"
	"trustio-wallet-go/internal/models"
	"trustio-wallet-go/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

// Services bundles the wired core: durable store, account directory
// (reconciled at load) and the ledger engine on top of it.
type Services struct {
	Store     *storage.Service
	Directory *directory.Directory
	Engine    *ledger.Engine
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	store, err := storage.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	dir, err := directory.Load(ctx, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Services{
		Store:     store,
		Directory: dir,
		Engine:    ledger.NewEngine(dir),
	}, nil
}

func (s *Services) Close() {
	if s.Store != nil {
		s.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
