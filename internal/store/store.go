// Package store persists recordings in a relational database via GORM.
// The driver is selectable: postgres for deployments, a pure-Go sqlite
// build for local runs and tests.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillsenselab/answerlens/internal/logger"
)

// Config holds database configuration.
type Config struct {
	// Driver selects the database backend: "postgres" or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// DSN is the connection string (or file path for sqlite).
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	MaxRetries      int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "answerlens.db"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "30m"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite (got: %s)", c.Driver)
	}
	if c.Driver == "postgres" && c.DSN == "" {
		return fmt.Errorf("database.dsn is required for the postgres driver")
	}
	return nil
}

// Store wraps a GORM database handle for recording persistence.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the configured database, retrying with linear backoff,
// and migrates the recordings table.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	log = log.WithComponent("store")
	start := time.Now()

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var db *gorm.DB
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		if attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.MaxRetries, err)
		}

		backoff := time.Duration(attempt) * time.Second
		log.Warn("Database connection attempt failed, retrying", logger.Fields(
			"attempt", attempt,
			"error", err.Error(),
			"backoff", backoff.String(),
		))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, parseErr := time.ParseDuration(cfg.ConnMaxLifetime); parseErr == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	if err := db.WithContext(ctx).AutoMigrate(&Recording{}); err != nil {
		return nil, fmt.Errorf("migrate recordings table: %w", err)
	}

	log.Info("Database connection established",
		logger.Fields("driver", cfg.Driver),
		logger.DurationFields("connect", time.Since(start)))
	return &Store{db: db, log: log}, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Create inserts a recording as a single atomic write. The generated id and
// created_at are populated on the passed record.
func (s *Store) Create(ctx context.Context, rec *Recording) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	s.log.Debug("Recording saved", logger.Fields("id", rec.ID))
	return nil
}

// ListNewestFirst returns every recording ordered by creation time
// descending, id descending as tiebreak for same-timestamp rows.
func (s *Store) ListNewestFirst(ctx context.Context) ([]Recording, error) {
	var recs []Recording
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return recs, nil
}

// Ping reports database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
