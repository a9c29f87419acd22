// Command migrate applies and inspects the post board schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
)

const usageText = "usage: migrate <up|auto|status|list|down <version>>"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usageText) }
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf(usageText)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	if cmd == "list" {
		for _, m := range database.GetMigrations() {
			fmt.Println(m.String())
		}
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// schema changes are explicit here, never a side effect of connecting
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	logger := middleware.Logger

	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		logger.Info("SQL migrations applied")
	case "auto":
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}
		logger.Info("Post tables automigrated")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		logger.Info("Schema status",
			slog.String("mode", status.Mode),
			slog.String("driver", status.Driver),
			slog.String("env", status.Environment),
			slog.Int("applied", len(status.AppliedVersions)),
			slog.Int("pending", len(status.PendingMigrations)),
		)
		for _, m := range status.PendingMigrations {
			fmt.Printf("pending %s\n", m.String())
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf(usageText)
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		logger.Info("Rolled back migration", slog.Int("version", version))
	default:
		return fmt.Errorf(usageText)
	}
	return nil
}
