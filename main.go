package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rate-comparison/clients/ratesapi"
	"rate-comparison/config"
	"rate-comparison/httpapi"
	"rate-comparison/models"
	"rate-comparison/scraper/ratesheet"
	"rate-comparison/services"
	"rate-comparison/storage"
	"rate-comparison/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger().WithLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Rate Comparison Analysis starting (mode: %s) ===", cfg.Mode)

	snapshots := openSnapshots(ctx, cfg, logger)

	var pg *storage.PostgresStore
	if cfg.PostgresEnabled {
		var err error
		pg, err = storage.NewPostgresStore(ctx, cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		defer pg.Close()
	}

	var api *ratesapi.Client
	if cfg.RatesAPIURL != "" {
		api = ratesapi.NewClient(cfg.RatesAPIURL, cfg.RatesAPIKey, cfg.MaxRetries)
	}

	agg := services.NewAggregator(logger)

	switch cfg.Mode {
	case "serve":
		if err := serve(ctx, cfg, logger, agg, observationSource(api, pg), storeSearcher(api), snapshots); err != nil {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	case "report":
		if err := runReport(ctx, cfg, logger, agg, api, pg, snapshots); err != nil {
			logger.Error("Report failed: %v", err)
			os.Exit(1)
		}
	default:
		logger.Error("Unknown MODE %q (want report or serve)", cfg.Mode)
		os.Exit(1)
	}
}

func openSnapshots(ctx context.Context, cfg *config.Config, logger *utils.Logger) storage.SnapshotStore {
	if cfg.RedisAddr != "" {
		rs := storage.NewRedisSnapshotStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
		err := rs.Ping(ctx)
		if err == nil {
			logger.Info("Wizard snapshots stored in Redis at %s", cfg.RedisAddr)
			return rs
		}
		logger.Warn("Redis unavailable (%v), using %s", err, cfg.StatePath)
		_ = rs.Close()
	}
	return storage.NewFileSnapshotStore(cfg.StatePath)
}

// observationSource prefers the rates service and falls back to Postgres.
func observationSource(api *ratesapi.Client, pg *storage.PostgresStore) services.ObservationSource {
	switch {
	case api != nil:
		return services.SourceFunc(api.FetchRates)
	case pg != nil:
		return services.SourceFunc(pg.FetchObservations)
	default:
		return nil
	}
}

// storeSearcher returns nil rather than a nil *Client inside the interface.
func storeSearcher(api *ratesapi.Client) services.StoreSearcher {
	if api == nil {
		return nil
	}
	return api
}

func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger, agg *services.Aggregator,
	source services.ObservationSource, searcher services.StoreSearcher, snapshots storage.SnapshotStore) error {
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.BuildRouter(httpapi.Deps{
			Aggregator: agg,
			Source:     source,
			Searcher:   searcher,
			Snapshots:  snapshots,
			Logger:     logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, logger *utils.Logger, agg *services.Aggregator,
	api *ratesapi.Client, pg *storage.PostgresStore, snapshots storage.SnapshotStore) error {
	snap, err := snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load wizard state: %w", err)
	}
	state := snap.State
	if len(state.Stores) == 0 && state.SearchQuery != "" && api != nil {
		stores, err := api.SearchStores(ctx, state.SearchQuery, 0)
		if err != nil {
			return fmt.Errorf("search stores for %q: %w", state.SearchQuery, err)
		}
		state.Stores = stores
		logger.Info("Resolved %d stores for search %q", len(stores), state.SearchQuery)
	}
	logger.Info("Loaded wizard state captured %s (subject %s, %d stores)",
		snap.CapturedAt.Format(time.RFC3339), state.SubjectStoreID, len(state.Stores))

	obs, fromStore, err := collectObservations(ctx, cfg, logger, api, pg, state)
	if err != nil {
		return err
	}
	if len(obs) == 0 {
		return errors.New("no rate observations available")
	}

	if pg != nil && !fromStore {
		if err := pg.SaveStores(ctx, state.Stores); err != nil {
			logger.Error("PostgreSQL store write failed: %v", err)
		}
		if err := pg.SaveObservations(ctx, obs); err != nil {
			logger.Error("PostgreSQL observation write failed: %v", err)
		} else {
			logger.Info("Stored %d observations in PostgreSQL", len(obs))
		}
	}

	in := state.ReportInput(obs, time.Now())
	report := agg.Generate(in)

	if err := writeExport(cfg.FullCSVPath, services.FullDumpHeader, services.FullDumpRows(in)); err != nil {
		logger.Error("Full data export failed: %v", err)
	} else {
		logger.Info("Full data dump saved to %s", cfg.FullCSVPath)
	}
	if err := writeExport(cfg.SummaryCSVPath, services.SummaryHeader(), services.SummaryRows(report)); err != nil {
		logger.Error("Summary export failed: %v", err)
	} else {
		logger.Info("Summary report saved to %s", cfg.SummaryCSVPath)
	}

	agg.Print(report)
	fmt.Printf("  Done. Full data → %s | Summary → %s\n\n", cfg.FullCSVPath, cfg.SummaryCSVPath)
	return nil
}

// collectObservations gathers rates from the rates service, the rate-page
// scraper and, when neither yields anything, previously stored rows.
// fromStore reports that the stored rows were used.
func collectObservations(ctx context.Context, cfg *config.Config, logger *utils.Logger,
	api *ratesapi.Client, pg *storage.PostgresStore, state models.WizardState) (obs []models.RateObservation, fromStore bool, err error) {
	ids := state.StoreIDs()

	if api != nil {
		fetched, err := api.FetchRates(ctx, ids)
		if err != nil {
			logger.Error("Rates service fetch failed: %v", err)
		} else {
			logger.Info("Fetched %d observations from the rates service", len(fetched))
			obs = append(obs, fetched...)
		}
	}

	if cfg.ScrapeEnabled {
		var targets []ratesheet.Target
		for _, s := range state.Stores {
			if s.RatesURL != "" {
				targets = append(targets, ratesheet.Target{StoreID: s.ID, URL: s.RatesURL})
			}
		}
		raw, err := ratesheet.New(cfg, logger).Scrape(ctx, targets)
		if err != nil {
			logger.Error("Rate page scrape failed: %v", err)
		} else {
			obs = append(obs, services.NewCleaner(logger).Clean(raw)...)
		}
	}

	if len(obs) == 0 && pg != nil {
		stored, err := pg.FetchObservations(ctx, ids)
		if err != nil {
			return nil, false, fmt.Errorf("fetch stored observations: %w", err)
		}
		logger.Info("Using %d previously stored observations", len(stored))
		return stored, true, nil
	}
	return obs, false, nil
}

func writeExport(path string, header []string, rows [][]string) error {
	w, err := storage.NewCSVWriter(path, header)
	if err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
