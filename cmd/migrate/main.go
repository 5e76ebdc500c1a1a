// Command migrate runs schema operations for the community database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"moodmate/internal/config"
	"moodmate/internal/database"

	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|auto|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		printStatus(status)
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	default:
		return usage()
	}

	return nil
}

func printStatus(status *database.SchemaStatus) {
	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.AppendRows([]table.Row{
		{"dialect", status.Dialect},
		{"mode", status.Mode},
		{"env", status.Environment},
		{"run sql", status.WillRunSQL},
		{"run automigrate", status.WillRunAutoMigrate},
		{"applied", len(status.AppliedVersions)},
		{"pending", len(status.PendingMigrations)},
	})
	summary.Render()

	if len(status.PendingMigrations) == 0 {
		return
	}
	pending := table.NewWriter()
	pending.SetOutputMirror(os.Stdout)
	pending.AppendHeader(table.Row{"Version", "Name"})
	for _, m := range status.PendingMigrations {
		pending.AppendRow(table.Row{fmt.Sprintf("%06d", m.Version), m.Name})
	}
	pending.Render()
}
