package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/repcycle/internal/config"
	"github.com/claude/repcycle/internal/importer"
	"github.com/claude/repcycle/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	planPath := flag.String("file", "", "path to YAML training plan (required)")
	userID := flag.Int("user", 1, "user ID to import into")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the database")
	flag.Parse()

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcycle-import -config config.yaml -file plan.yaml [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.Log.NewLogger(os.Stdout)

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be written")
	}

	imp := importer.New(db, log, *userID, *dryRun)
	stats, err := imp.ImportFile(ctx, *planPath)
	if err != nil {
		log.Error("import failed", "file", *planPath, "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"priorities_set", stats.PrioritiesSet,
		"workouts_created", stats.WorkoutsCreated,
		"workouts_updated", stats.WorkoutsUpdated,
		"splits_created", stats.SplitsCreated,
		"splits_updated", stats.SplitsUpdated,
	)
	if stats.ActivatedSplit != "" {
		log.Info("activated split", "name", stats.ActivatedSplit)
	}
}
