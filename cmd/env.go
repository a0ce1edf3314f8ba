package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/adapter"
	"github.com/restolead/catalog-cli/internal/extract"
	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/resolver"
	"github.com/restolead/catalog-cli/internal/store"
	"github.com/restolead/catalog-cli/internal/surface"
)

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return st, nil
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initRegistry wires the fetcher and site adapters.
func initRegistry() (*adapter.Registry, error) {
	var chains *extract.ChainConfig
	if cfg.Chains.Path != "" {
		c, err := extract.LoadChainConfig(cfg.Chains.Path)
		if err != nil {
			return nil, eris.Wrap(err, "load chain config")
		}
		chains = c
	}

	fetcher := surface.NewHTTPFetcher(surface.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		PerHostRPS: cfg.Fetch.PerHostRPS,
	})

	return adapter.NewRegistry(
		adapter.DefaultTableSite(fetcher, chains),
		adapter.DefaultAppStateSite(fetcher, chains),
	), nil
}

// initResolver builds the resolver with scope and name-refresh settings,
// letting command flags override config.
func initResolver(st store.Store, scope string, refreshNames bool) *resolver.Resolver {
	if scope == "" {
		scope = cfg.Resolve.Scope
	}
	return resolver.New(st, resolver.Options{
		Scope:        scope,
		RefreshNames: refreshNames || cfg.Resolve.RefreshNames,
	})
}

// printReport writes the run report to stdout as JSON and logs the
// summary counts.
func printReport(report *model.RunReport) error {
	zap.L().Info("run complete",
		zap.Int("created", report.Created),
		zap.Int("merged", report.Merged),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored),
		zap.Duration("elapsed", report.Elapsed))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(report), "encode report")
}
