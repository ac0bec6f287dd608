package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"owcs-analyzer/internal/chart"
	"owcs-analyzer/internal/config"
	"owcs-analyzer/internal/db"
	"owcs-analyzer/internal/discord"
	"owcs-analyzer/internal/export"
	"owcs-analyzer/internal/logging"
	"owcs-analyzer/internal/matches"
	"owcs-analyzer/internal/report"
)

const sinkTimeout = 2 * time.Minute

func main() {
	envPath := config.LoadEnv(config.EnvPaths...)

	cfg, err := config.ParseAnalyzer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if envPath != "" {
		log.Debugf("Loaded .env from: %s", envPath)
	}

	if err := run(cfg, log); err != nil {
		log.Errorf("Analyzer failed: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	rows, err := matches.NewLoader(log).LoadFile(cfg.Input)
	if err != nil {
		notifyFailure(cfg, log, err)
		return fmt.Errorf("failed to load %s: %w", cfg.Input, err)
	}

	opts := report.Options{
		MinHeroMaps: cfg.MinHeroMaps,
		BanLimit:    cfg.BanLimit,
		SwitchLimit: cfg.SwitchLimit,
		PlayerLimit: cfg.PlayerLimit,
	}
	rep := report.NewBuilder(log).Build(filepath.Base(cfg.Input), rows, opts)

	if !cfg.SkipCharts {
		renderer, err := chart.NewRenderer(cfg.OutputDir, cfg.ChartFormat, log)
		if err != nil {
			return err
		}
		if _, err := renderer.RenderAll(rep, opts); err != nil {
			return fmt.Errorf("failed to render charts: %w", err)
		}
	}

	if !cfg.SkipJSON {
		manifest, err := export.WriteJSON(cfg.OutputDir, rep)
		if err != nil {
			return fmt.Errorf("failed to export JSON: %w", err)
		}
		log.Infof("Exported %s (sha256 %s)", filepath.Join(cfg.OutputDir, export.DataFile), manifest.DataSha256)
	}

	for _, sink := range openSinks(cfg, log) {
		writeSink(sink, rep, log)
	}

	if cfg.DiscordEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()
		if err := discord.NewWebhookClient(cfg.DiscordWebhookURL).SendRunSummary(ctx, rep); err != nil {
			log.Warnf("Failed to post Discord summary: %v", err)
		} else {
			log.Info("Posted Discord summary")
		}
	}

	log.Infof("Analyzer complete: run %s", rep.RunID)
	return nil
}

// openSinks connects every configured database. Sinks that fail to connect
// are logged and left out.
func openSinks(cfg *config.Config, log *zap.SugaredLogger) []db.Sink {
	var sinks []db.Sink

	if cfg.SQLitePath != "" {
		if s, err := db.OpenSQLite(cfg.SQLitePath, log); err != nil {
			log.Warnf("Skipping SQLite: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.TursoEnabled() {
		if s, err := db.OpenTurso(cfg.TursoURL, cfg.TursoToken, log); err != nil {
			log.Warnf("Skipping Turso: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	} else if !cfg.SkipTurso {
		log.Debug("Skipping Turso push - TURSO_DATABASE_URL not set")
	}

	if cfg.PostgresEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s, err := db.NewPostgres(ctx, cfg.PostgresURL, log); err != nil {
			log.Warnf("Skipping Postgres: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	return sinks
}

func writeSink(sink db.Sink, rep *report.Report, log *zap.SugaredLogger) {
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	start := time.Now()
	if err := sink.Write(ctx, rep); err != nil {
		log.Warnf("Failed to write %s: %v", sink.Name(), err)
		return
	}
	log.Infof("Wrote results to %s in %v", sink.Name(), time.Since(start).Round(time.Millisecond))
}

func notifyFailure(cfg *config.Config, log *zap.SugaredLogger, runErr error) {
	if !cfg.DiscordEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := discord.NewWebhookClient(cfg.DiscordWebhookURL).SendRunFailed(ctx, cfg.Input, runErr); err != nil {
		log.Warnf("Failed to post Discord failure notice: %v", err)
	}
}
