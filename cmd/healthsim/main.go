// Command healthsim runs the day-stepped health system microsimulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mkwanda/healthsim/internal/api"
	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/labour"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/pregnancy"
	"github.com/mkwanda/healthsim/internal/record"
	"github.com/mkwanda/healthsim/internal/rng"
	"github.com/mkwanda/healthsim/internal/sim"
)

func main() {
	var (
		seed       = flag.Int64("seed", 42, "master random seed")
		days       = flag.Int("days", 365, "number of simulated days")
		popSize    = flag.Int("pop", 10000, "initial population size")
		paramsPath = flag.String("params", "", "YAML parameter overlay (optional)")
		dbPath     = flag.String("db", "data/healthsim.db", "SQLite output database ('' to disable)")
		apiPort    = flag.Int("port", 0, "HTTP API port (0 to disable)")
		verbose    = flag.Bool("v", false, "debug logging")
		startDate  = flag.String("start", "2026-01-01", "simulation start date (YYYY-MM-DD)")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		slog.Error("invalid start date", "value", *startDate, "error", err)
		os.Exit(1)
	}

	p, err := params.Load(*paramsPath)
	if err != nil {
		slog.Error("loading parameters failed", "path", *paramsPath, "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *record.Store
	var rec sim.Recorder = sim.NopRecorder{}
	if *dbPath != "" {
		os.MkdirAll(filepath.Dir(*dbPath), 0755)
		db, err = record.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		runID, err := db.StartRun(*seed)
		if err != nil {
			slog.Error("failed to start run", "error", err)
			os.Exit(1)
		}
		rec = db
		slog.Info("database opened", "path", *dbPath, "run_id", runID)
	}

	// ── Population and health system ─────────────────────────────────
	reg := rng.NewRegistry(*seed)

	pop := population.NewStore()
	pop.Bootstrap(*popSize, reg.Module("population"), start)
	slog.Info("population bootstrapped", "size", pop.Len())

	cons := consumables.New(
		p.Consumables.Items, p.Consumables.Drift, p.Consumables.ForcedAvailability,
		*seed, reg.Module("consumables"))
	hs := healthsystem.New(p.HealthSystem, pop, cons, reg.Module("healthsystem"))

	// ── Simulation and modules ───────────────────────────────────────
	s := sim.New(start, pop, hs, p, reg, rec)

	lab := labour.New(pop, hs, &p.Labour, reg.Module("labour"))
	lab.Attach(s)
	preg := pregnancy.New(pop, &p.Pregnancy, reg.Module("pregnancy"), lab)

	s.Register(preg)
	s.Register(lab)

	// ── HTTP API ──────────────────────────────────────────────────────
	if *apiPort > 0 {
		srv := &api.Server{Sim: s, DB: db, Port: *apiPort}
		srv.Start()
	}

	// ── Run ───────────────────────────────────────────────────────────
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping", "signal", sig)
		close(stop)
	}()

	fmt.Printf("Simulating %s people over %d days from %s (seed %d)\n",
		humanize.Comma(int64(pop.Len())), *days, start.Format("2006-01-02"), *seed)

	ran := s.Run(*days, stop)

	// ── Summary ───────────────────────────────────────────────────────
	stats := s.Stats()
	hsStats := hs.Stats()
	slog.Info("run complete",
		"days", ran,
		"births", stats.Births,
		"deaths", stats.Deaths,
		"events", stats.EventsFired,
		"hsi_ran", hsStats.Ran,
		"hsi_did_not_run", hsStats.DidNotRun,
		"hsi_never_ran", hsStats.NeverRan,
		"hsi_not_available", hsStats.NotAvailable)

	if db != nil {
		if err := db.SavePersons(pop); err != nil {
			slog.Error("saving population failed", "error", err)
		}
		if err := db.FinishRun(ran); err != nil {
			slog.Error("finishing run failed", "error", err)
		}
	}

	fmt.Printf("\n%s days simulated: %s alive of %s, %s births, %s deaths.\n",
		humanize.Comma(int64(ran)),
		humanize.Comma(int64(pop.AliveCount())),
		humanize.Comma(int64(pop.Len())),
		humanize.Comma(int64(stats.Births)),
		humanize.Comma(int64(stats.Deaths)))
}
