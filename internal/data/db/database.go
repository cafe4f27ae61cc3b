package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"`
	// Path is the sqlite database file. ":memory:" keeps everything in process.
	Path string `yaml:"path" env:"DB_PATH"`
	DSN  string `yaml:"dsn" env:"POSTGRES_DSN"`
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return fmt.Errorf("db: sqlite driver requires DB_PATH")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DSN) == "" {
			return fmt.Errorf("db: postgres driver requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("db: unsupported driver %q", c.Driver)
	}
	return nil
}

type DatabaseService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatabaseService(cfg Config, logg *logger.Logger) (*DatabaseService, error) {
	serviceLog := logg.With("service", "DatabaseService", "driver", cfg.Driver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		gormWriter{log: serviceLog},
		gormLogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		theDB *gorm.DB
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		theDB, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	default:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to ensure sqlite dir: %w", err)
			}
		}
		theDB, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %q: %w", cfg.Path, err)
		}
		sqlDB, err := theDB.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// One writer connection; sqlite serializes writes anyway and this avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}

	serviceLog.Info("Database opened")
	return &DatabaseService{db: theDB, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB { return s.db }

func (s *DatabaseService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// gormWriter routes gorm's own diagnostics (slow queries, errors) into zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.SugaredLogger.Warnf(format, args...)
}
