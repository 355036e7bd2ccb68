package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/taskflow/internal/models"
)

// Store is the persistent home of plans, tasks, pomodoros, day markers and settings
type Store struct {
	db *gorm.DB
}

// Option tweaks how a store is opened
type Option func(*options)

type options struct {
	verbose bool
}

// WithVerbose logs every SQL statement to stderr
func WithVerbose(verbose bool) Option {
	return func(o *options) { o.verbose = verbose }
}

// Open opens (or creates) the SQLite database at path and runs migrations
func Open(path string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create taskflow directory: %w", err)
		}
	}

	logLevel := logger.Silent // Quiet by default
	if o.verbose {
		logLevel = logger.Info
	}
	gormLogger := logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})

	dsn := path
	if path != ":memory:" {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	// A single connection keeps in-memory databases alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: gdb}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// OpenMemory opens a throwaway in-memory store
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// DefaultPath returns ~/.taskflow/taskflow.db
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".taskflow", "taskflow.db"), nil
}

// migrate creates/updates the database schema
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&models.Plan{},
		&models.Task{},
		&models.Pomodoro{},
		&models.DayMarker{},
		&models.Settings{},
	)
}

// Transaction runs fn against a transactional store. Every write made through tx
// is committed together, or none is when fn returns an error.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.Transaction(func(gtx *gorm.DB) error {
		fnErr = fn(&Store{db: gtx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return wrapErr("commit", err)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
