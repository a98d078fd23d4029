package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/sqldrill/internal/cache"
	"github.com/abhisek/sqldrill/internal/embed"
	"github.com/abhisek/sqldrill/internal/llm"
	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/store"
)

// app bundles the dependencies every subcommand needs.
type app struct {
	store  *store.Store
	log    *logger.Logger
	cache  *cache.Cache
	userID string
}

// openApp opens the store and cache from flags and environment.
func openApp(cmd *cobra.Command) (*app, error) {
	log, err := logger.New(os.Getenv("SQLDRILL_LOG_MODE"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := store.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve database config: %w", err)
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DSN = dsn
		if cfg.Driver == "sqlite" {
			if err := store.EnsureDir(dsn); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	st, err := store.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		userID = "default"
	}

	// A broken cache dir is not fatal: a nil cache just disables result
	// caching.
	c, err := cache.New(cacheDir(), cache.DefaultTTL, log)
	if err != nil {
		log.Warn("cache disabled", "error", err)
		c = nil
	}

	return &app{
		store:  st,
		log:    log,
		cache:  c,
		userID: userID,
	}, nil
}

func (a *app) close() {
	a.store.Close()
	a.log.Sync()
}

// newProvider builds the grading/explanation provider, or nil when no
// provider is configured. Practice works without one: free-text answers
// fall back to keyword matching. The returned timeout is the configured
// per-request bound and is valid even when the provider is nil.
func (a *app) newProvider(ctx context.Context) (llm.Provider, time.Duration) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Free-text answers will be graded by keyword match.")
		return nil, cfg.Timeout
	}
	provider, err := llm.NewProvider(ctx, cfg, a.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider unavailable:", err)
		return nil, cfg.Timeout
	}
	return provider, cfg.Timeout
}

// newEmbedder builds the cached embedding client used by
// recommendations.
func (a *app) newEmbedder() (embed.Embedder, error) {
	base, err := embed.NewOpenAIEmbedder(embed.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	return embed.WithCache(base, a.cache), nil
}

// cacheDir resolves the on-disk cache directory, preferring
// SQLDRILL_CACHE_DIR over the platform user cache.
func cacheDir() string {
	if d := os.Getenv("SQLDRILL_CACHE_DIR"); d != "" {
		return d
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sqldrill-cache")
	}
	return filepath.Join(base, "sqldrill")
}
