package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moodmate/internal/config"
	"moodmate/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
//
//	sql     embedded SQL migrations only
//	auto    GORM AutoMigrate only; refused in production-like environments
//	        unless DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE is set
//	hybrid  SQL migrations, plus AutoMigrate outside production
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do against a database.
type SchemaStatus struct {
	Dialect            string
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// schemaPlan is the resolved DB_SCHEMA_MODE for one database.
type schemaPlan struct {
	mode    string
	runSQL  bool
	runAuto bool
}

func schemaMode(cfg *config.Config) string {
	if mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)); mode != "" {
		return mode
	}
	return SchemaModeHybrid
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	prodLike := isProdLikeEnv(cfg.Env)
	switch mode := schemaMode(cfg); mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeHybrid:
		return true, !prodLike, nil
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// planFor resolves the policy for db. The embedded SQL is Postgres-only
// (jsonb links, the plpgsql quota trigger); other dialects AutoMigrate.
func planFor(db *gorm.DB, cfg *config.Config) (schemaPlan, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return schemaPlan{}, err
	}
	plan := schemaPlan{mode: schemaMode(cfg), runSQL: runSQL, runAuto: runAuto}
	if db.Dialector.Name() != "postgres" && plan.runSQL {
		plan.runSQL, plan.runAuto = false, true
	}
	return plan, nil
}

// ApplySchema brings the community tables up to date per DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planFor(db, cfg)
	if err != nil {
		return err
	}
	if plan.runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !plan.runAuto {
		return nil
	}

	log := middleware.Logger.With(slog.String("mode", plan.mode), slog.String("env", cfg.Env))
	if plan.mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
		log.WarnContext(ctx, "AutoMigrate enabled with DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE; review schema diffs before deploying")
	}
	log.InfoContext(ctx, "running GORM AutoMigrate", slog.Int("models", len(PersistentModels())))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the resolved plan and, for SQL mode, the applied
// and pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planFor(db, cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{
		Dialect:            db.Dialector.Name(),
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.runSQL,
		WillRunAutoMigrate: plan.runAuto,
	}
	if !plan.runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations, err = pending(applied, GetMigrations())
	if err != nil {
		return nil, err
	}
	return status, nil
}
