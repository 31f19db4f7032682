package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"mallhub/internal/shared/logger"
)

//go:embed scripts
var embeddedScripts embed.FS

// goose keeps its dialect and base filesystem in package globals.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB, models ...interface{}) error
	// GetName returns the strategy name
	GetName() string
}

type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

// GooseStrategy runs the versioned SQL scripts for the connection's dialect.
// Scripts are embedded in the binary; the on-disk directory is only used to
// create new ones.
type GooseStrategy struct {
	scripts     fs.FS
	scriptsPath string
	logger      logger.Interface
}

func NewGooseStrategy(scriptsPath string, log logger.Interface) *GooseStrategy {
	return &GooseStrategy{
		scripts:     embeddedScripts,
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.goose"),
	}
}

// gooseDialect maps the gorm dialector to goose's dialect name and the
// script directory holding that dialect's DDL.
func gooseDialect(db *gorm.DB) (string, string, error) {
	switch name := db.Dialector.Name(); name {
	case "mysql":
		return "mysql", "scripts/mysql", nil
	case "postgres":
		return "postgres", "scripts/postgres", nil
	case "sqlite":
		return "sqlite3", "scripts/sqlite", nil
	default:
		return "", "", fmt.Errorf("no migration scripts for dialect %s", name)
	}
}

// prepare must be called with gooseMu held.
func (s *GooseStrategy) prepare(db *gorm.DB) (*sql.DB, string, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dialect, dir, err := gooseDialect(db)
	if err != nil {
		return nil, "", err
	}

	goose.SetBaseFS(s.scripts)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, "", fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return sqlDB, dir, nil
}

func (s *GooseStrategy) Migrate(db *gorm.DB, _ ...interface{}) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	s.logger.Infow("starting goose migration", "scripts", dir)

	currentVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		s.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		s.logger.Errorw("failed to get final version", "error", err)
		return fmt.Errorf("failed to get final version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)

	return nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	s.logger.Infow("starting down migration", "steps", steps)

	for i := 0; i < steps; i++ {
		if err := goose.Down(sqlDB, dir); err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	s.logger.Infow("down migration completed successfully")
	return nil
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	sqlDB, _, err := s.prepare(db)
	if err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}

	return version, nil
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	if err := goose.Status(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	return nil
}

// Create writes a new SQL script for one dialect under the on-disk scripts
// directory. The binary must be rebuilt to embed it.
func (s *GooseStrategy) Create(dialect, name string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	switch dialect {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown dialect %q", dialect)
	}

	goose.SetBaseFS(nil)
	defer goose.SetBaseFS(s.scripts)

	dir := filepath.Join(s.scriptsPath, dialect)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}
