package client

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoArmGo/WorkoutTracker/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Client owns the connection pool. sqlx and gorm share the same *sql.DB.
type Client struct {
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Driver string
	logger *slog.Logger
}

// NewClient opens the database configured by cfg.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return Open(cfg.DBDriver, cfg.DatabaseURL, logger)
}

// Open connects to dsn with the given driver ("postgres" or "sqlite").
func Open(driver, dsn string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			logger.Error("failed to open PostgreSQL connection", "error", err)
			return nil, fmt.Errorf("open postgres connection: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		db, err = sqlx.Connect("sqlite3", sqliteDSN(dsn))
		if err != nil {
			logger.Error("failed to open SQLite database", "error", err)
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := openGorm(driver, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connection established",
		"driver", driver,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, Gorm: gdb, Driver: driver, logger: logger}, nil
}

func openGorm(driver string, db *sqlx.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == DriverPostgres {
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	} else {
		dialector = &sqlite.Dialector{Conn: db.DB}
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm session: %w", err)
	}
	return gdb, nil
}

// sqliteDSN turns a path or file: URI into a DSN with foreign keys and a
// busy timeout enabled.
func sqliteDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
