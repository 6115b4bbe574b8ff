package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/windfleet/windfleet/internal/alerts"
	"github.com/windfleet/windfleet/internal/api"
	"github.com/windfleet/windfleet/internal/config"
	"github.com/windfleet/windfleet/internal/costs"
	"github.com/windfleet/windfleet/internal/loader"
	"github.com/windfleet/windfleet/internal/session"
	"github.com/windfleet/windfleet/internal/store"
	"github.com/windfleet/windfleet/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("fleetd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"data_file", cfg.Fleet.DataFile,
		"repair_threshold", cfg.Fleet.RepairThreshold,
		"http_port", cfg.Server.HTTPPort,
		"reevaluate_interval", cfg.Fleet.ReevaluateInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	assets, recErrs, err := loader.LoadFile(cfg.Fleet.DataFile)
	if err != nil {
		slog.Error("failed to load fleet data", "file", cfg.Fleet.DataFile, "err", err)
		os.Exit(1)
	}
	if len(recErrs) > 0 {
		slog.Warn("fleet data loaded with skipped records",
			"assets", len(assets), "skipped", len(recErrs))
	} else {
		slog.Info("fleet data loaded", "assets", len(assets))
	}

	sess, err := session.New(costs.Model{
		CostPerDistanceUnit: cfg.Fleet.CostPerDistanceUnit,
		CrewCostPerDay:      cfg.Fleet.CrewCostPerDay,
		VesselCostPerDay:    cfg.Fleet.VesselCostPerDay,
	}, cfg.Fleet.RepairThreshold)
	if err != nil {
		slog.Error("invalid evaluation tunables", "err", err)
		os.Exit(1)
	}
	sess.SetAssets(assets)

	if pt, err := cfg.Fleet.PredictionTime(); err != nil {
		slog.Error("invalid prediction date", "err", err)
		os.Exit(1)
	} else if !pt.IsZero() {
		if err := sess.SetPredictionDate(pt); err != nil {
			slog.Error("invalid prediction date", "err", err)
			os.Exit(1)
		}
		slog.Info("evaluating at fixed prediction date", "date", pt.Format("2006-01-02"))
	}

	st := store.New(cfg.Server.History)
	alertEngine := alerts.New(cfg.Server.Alerts)

	// The session is single-writer: evaluations and config changes are
	// serialized behind this mutex. Readers only ever see completed
	// snapshots through the store.
	var mu sync.Mutex
	evaluate := func(trigger string) {
		mu.Lock()
		defer mu.Unlock()

		start := time.Now()
		snap, err := sess.Evaluate()
		if err != nil {
			slog.Error("evaluation failed", "trigger", trigger, "err", err)
			return
		}
		st.Put(snap)
		alertEngine.Evaluate(snap)
		slog.Info("evaluation complete",
			"trigger", trigger,
			"run_id", snap.RunID,
			"assets", len(snap.Assets),
			"worthy", snap.WorthyCount,
			"route_stops", len(snap.Route),
			"anomalies", len(snap.Anomalies),
			"took", time.Since(start),
		)
	}
	evaluate("startup")

	// Re-evaluate on an interval so wear advances with the clock.
	go func() {
		ticker := time.NewTicker(cfg.Fleet.ReevaluateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evaluate("interval")
			}
		}
	}()

	// Watch the config file and apply tunable changes without a restart.
	// A change that fails validation is logged and skipped; the session
	// keeps its previous tunables.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			mu.Lock()
			changed := applyFleetConfig(sess, updated.Fleet)
			mu.Unlock()
			if changed {
				evaluate("config-reload")
			}
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts the latest snapshot to clients.
	hub := ws.New(st, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + metrics + WebSocket hub.
	apiHandler := api.New(st, alertEngine)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.Middleware(cfg.Server.Auth, apiHandler))
	httpMux.Handle("/metrics", apiHandler)
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("fleetd shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// applyFleetConfig pushes reloaded fleet tunables into the session.
// Returns true if anything changed, meaning a re-evaluation is due.
func applyFleetConfig(sess *session.Session, f config.FleetConfig) bool {
	changed := false

	if err := sess.SetThreshold(f.RepairThreshold); err != nil {
		slog.Error("reload: repair_threshold rejected", "err", err)
	} else {
		changed = true
	}

	if err := sess.SetCostRate(f.CostPerDistanceUnit); err != nil {
		slog.Error("reload: cost_per_distance_unit rejected", "err", err)
	} else {
		changed = true
	}

	if err := sess.SetOperationRates(f.CrewCostPerDay, f.VesselCostPerDay); err != nil {
		slog.Error("reload: operation day rates rejected", "err", err)
	} else {
		changed = true
	}

	pt, err := f.PredictionTime()
	switch {
	case err != nil:
		slog.Error("reload: prediction_date rejected", "err", err)
	case pt.IsZero():
		sess.ClearPredictionDate()
		changed = true
	default:
		if err := sess.SetPredictionDate(pt); err != nil {
			slog.Error("reload: prediction_date rejected", "err", err)
		} else {
			changed = true
		}
	}

	return changed
}
