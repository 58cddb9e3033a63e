package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var log = logrus.New()

// ErrUnsupportedDriver is returned for drivers other than postgres and sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the database logger.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// InitDatabase connects to the store database. Connection failures are
// retried with a doubling delay; an unknown driver fails at once.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	attempts, delay := cfg.retryPolicy()

	logger := log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_url":    maskURL(cfg.URL),
		"db_path":   cfg.Path,
	})
	logger.Info("Initializing database connection")

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := connect(driver, cfg.DSN())
		if err == nil {
			logger.WithField("attempt", attempt).Info("Database initialized successfully")
			return db, nil
		}
		if errors.Is(err, ErrUnsupportedDriver) {
			return nil, err
		}

		lastErr = err
		logger.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
		}).Warn("Database connection attempt failed")
		if attempt < attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// connect opens, pings and sizes the pool of one connection attempt.
func connect(driver, dsn string) (*gorm.DB, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	configureConnectionPool(sqlDB, driver)
	return db, nil
}

// Open opens a gorm handle for the driver. Driver errors such as unique
// violations are translated to gorm errors (gorm.ErrDuplicatedKey).
func Open(driver, dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}

	switch driver {
	case "postgres", "postgresql":
		log.Debug("Connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite", "":
		log.WithField("db_path", dsn).Debug("Connecting to SQLite")
		return gorm.Open(sqlite.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("%w: %s (supported: postgres, sqlite)", ErrUnsupportedDriver, driver)
	}
}

// configureConnectionPool sizes the pool for the driver
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen := 25
	if driver == "sqlite" || driver == "" {
		// SQLite allows a single writer; one connection avoids "database is locked"
		maxOpen = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(5, maxOpen))
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    min(5, maxOpen),
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
