// Command lauractl is the operator CLI for the lead store: seed demo data,
// list and export leads, and price a selection from the shell.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"laura-backend/internal/config"
	"laura-backend/internal/kv"
	"laura-backend/internal/leads"
	"laura-backend/internal/pricing"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg   *config.Config
	kv    kv.Closer
	store *leads.Store
	log   *slog.Logger
}

func (e *env) Close() error {
	if e.kv == nil {
		return nil
	}
	return e.kv.Close()
}

func rootCmd() *cobra.Command {
	var (
		backend  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "lauractl",
		Short:         "Operate the Laura lead store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "kv backend override (sqlite, memory, redis, mongo, dynamodb)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	open := func(ctx context.Context) (*env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if backend != "" {
			cfg.KVBackend = backend
		}
		log := newLogger(os.Stderr, logLevel)
		store, err := kv.Open(ctx, kv.Options{
			Backend:       cfg.KVBackend,
			SQLitePath:    cfg.SQLitePath,
			RedisURL:      cfg.RedisURL,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			MongoURI:      cfg.MongoURI,
			MongoDB:       cfg.MongoDB,
			DynamoTable:   cfg.DynamoTable,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.KVBackend, err)
		}
		rates, err := loadRates(cfg, log)
		if err != nil {
			store.Close()
			return nil, err
		}
		// no forwarders: seeded leads must not reach the CRM or the owner
		dispatcher := leads.NewDispatcher(log, time.Second)
		return &env{
			cfg:   cfg,
			kv:    store,
			store: leads.NewStore(store, rates, cfg.Timezone, log, dispatcher),
			log:   log,
		}, nil
	}

	cmd.AddCommand(seedCmd(open), listCmd(open), exportCmd(open), estimateCmd())
	return cmd
}

// ratesFor returns the rates the API would price with: the PRICING_FILE
// rates when one is configured, the defaults otherwise.
func ratesFor(path string) (pricing.Rates, error) {
	if path == "" {
		return pricing.DefaultRates(), nil
	}
	return pricing.LoadRates(path)
}

func loadRates(cfg *config.Config, log *slog.Logger) (pricing.RatesSource, error) {
	rates, err := ratesFor(cfg.PricingFile)
	if err != nil {
		return nil, err
	}
	if cfg.PricingFile != "" {
		log.Debug("pricing rates loaded", slog.String("path", cfg.PricingFile))
	}
	return pricing.StaticRates(rates), nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
