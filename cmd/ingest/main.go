package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
	"github.com/JaimeStill/actigraphy/internal/ingest"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	var (
		dataDir    = flag.String("data-dir", cfg.Ingest.DataDir, "Directory holding one output_<id> directory per subject")
		identifier = flag.String("identifier", "", "Import only the named subject directory")
		workers    = flag.Int("workers", cfg.Ingest.Workers, "Subjects imported concurrently")
		publish    = flag.Bool("publish", true, "Publish the exports of every created subject")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, *dataDir, *identifier, *workers, *publish))
}

func run(ctx context.Context, cfg *config.Config, dataDir, identifier string, workers int, publish bool) int {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Print("infrastructure init failed: ", err)
		return 1
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	if err := infra.Start(); err != nil {
		infra.Logger.Error("infrastructure start failed", "error", err)
		return 1
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		infra.Logger.Error("startup failed", "error", err)
		return 1
	}

	logger := infra.Logger.With("module", "ingest")
	db := infra.Database.Connection()
	subjectsSystem := subjects.New(db, logger, cfg.API.Pagination)

	pipeline := ingest.NewPipeline(subjectsSystem, cfg.App.DefaultSleepOffset(), logger)
	runner := ingest.NewRunner(pipeline, workers, logger)

	report, err := runner.Run(ctx, dataDir, identifier)
	if err != nil {
		logger.Error("ingest aborted", "error", err)
		return 1
	}

	if publish {
		publisher := export.NewPublisher(infra.Storage, subjectsSystem, sleeptimes.New(db, logger), logger)
		for _, name := range report.Created {
			if err := publisher.Publish(ctx, name, export.Kinds...); err != nil {
				logger.Error("publish exports failed", "subject", name, "error", err)
			}
		}
	}

	printReport(os.Stdout, report)

	if len(report.Failed) > 0 {
		return 2
	}
	return 0
}
