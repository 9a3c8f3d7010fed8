package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yigit/edumanage/internal/app/migrations"
	"github.com/yigit/edumanage/internal/config"
	"github.com/yigit/edumanage/internal/db"
	"github.com/yigit/edumanage/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the config file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))

	if cfg.UsesMemoryStore() {
		lgr.Error().Msg("The memory driver has no schema to migrate")
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	migrator := migrations.NewMigrator(database.Pool, lgr)

	switch args[0] {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "version":
		var version int64
		if version, err = migrator.Version(ctx); err == nil {
			fmt.Println(version)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		flag.Usage()
		database.Close()
		os.Exit(2)
	}

	if err != nil {
		lgr.Error().Err(err).Str("command", args[0]).Msg("Migration command failed")
		database.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrator [-config path] <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up       apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down     roll back the most recent migration")
	fmt.Fprintln(os.Stderr, "  status   show the state of every migration")
	fmt.Fprintln(os.Stderr, "  version  print the current schema version")
}
