// Package cli holds the setup shared by the moneymate commands: logging,
// environment and config loading, the token store and terminal prompts.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneymate/internal/config"
	"moneymate/internal/log"
	"moneymate/internal/storage"
)

// SetupLogger builds the tint logger at the given level name, writing to out,
// and makes it the slog default.
func SetupLogger(level string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level, slog.LevelWarn)
	cfg.Output = out
	cfg.Component = log.ComponentCLI
	if f, ok := out.(*os.File); !ok || !isTerminal(f) {
		cfg.NoColor = true
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and applies overrides on top
// before validating.
func LoadAndValidateConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenStore is the device-local token store plus the database behind it.
type TokenStore struct {
	*storage.TokenStore
	repo *storage.SQLiteRepository
}

func (t *TokenStore) Close() error {
	return t.repo.Close()
}

// OpenTokenStore opens the SQLite database at cfg.DBPath. When a token
// secret is configured the token is sealed before it is written.
func OpenTokenStore(cfg *config.Config, logger *log.Logger) (*TokenStore, error) {
	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	var kv storage.KV = repo
	if key, ok := cfg.TokenKey(); ok {
		kv = storage.NewSealedStore(repo, key)
	}
	logger.Debug("Token store opened",
		"path", cfg.DBPath,
		"sealed", cfg.TokenSecret != "")

	return &TokenStore{TokenStore: storage.NewTokenStore(kv), repo: repo}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Debug("Signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
