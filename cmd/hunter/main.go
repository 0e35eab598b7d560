package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/bekzodm/sponsorhunt/internal/api"
	"github.com/bekzodm/sponsorhunt/internal/config"
	"github.com/bekzodm/sponsorhunt/internal/notify"
	"github.com/bekzodm/sponsorhunt/internal/pipeline"
	"github.com/bekzodm/sponsorhunt/internal/roster"
	"github.com/bekzodm/sponsorhunt/internal/runner"
	"github.com/bekzodm/sponsorhunt/internal/scraper"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	once := flag.Bool("once", false, "run a single batch and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var records store.RecordStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		records = pg
	} else {
		records = store.NewFileStore(cfg.StatePath)
	}

	mailer, err := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, notify.Credentials{
		Sender:    cfg.SMTP.Sender,
		Password:  cfg.SMTP.Password,
		Recipient: cfg.SMTP.Recipient,
	})
	if err != nil {
		slog.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	rules := pipeline.Rules{
		ScrapeKeywords:     cfg.ScrapeKeywords,
		RoleKeywords:       cfg.RoleKeywords,
		EntryLevelKeywords: cfg.EntryLevelKeywords,
		ExcludedKeywords:   cfg.ExcludedKeywords,
	}
	pipe := pipeline.New(rules, pipeline.TFIDFMatcher{MinN: cfg.NgramMin, MaxN: cfg.NgramMax}, cfg.MatchThreshold)
	collector := scraper.NewLinkedInScraper(cfg.ScrapeURL, cfg.UserAgent, rules.RelevantForCollection)
	loadRoster := func() ([]roster.ReferenceEmployer, error) {
		return roster.Load(cfg.RosterPath, cfg.RosterCompanyColumn)
	}

	run := runner.New(cfg, records, collector, loadRoster, pipe, mailer)
	ctx := context.Background()

	if *once {
		if err := run.RunOnce(ctx); err != nil {
			slog.Error("batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	scheduler := runner.NewScheduler(run, cfg.Schedule)
	if err := scheduler.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	srv := api.NewServer(records, run)
	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
