package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/dreamolight/Phone2/internal/models"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	db *sql.DB
}

// NewDatabase opens the sqlite database at dsn and applies all pending
// migrations.
func NewDatabase(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Verify we can actually connect to the database
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("ping failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	// Serialized merge attempts rely on the natural-key constraint, so the
	// schema must be in place before any request is served.
	if err := runMigrations(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("migrations failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	return &Database{db: db}, nil
}

// runMigrations applies the embedded additive migrations using goose.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// GetDB exposes the underlying handle for repository construction.
func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	if d == nil {
		return errors.New("database is nil")
	}

	if d.db == nil {
		return errors.New("database already closed")
	}

	err := d.db.Close()
	d.db = nil
	return err
}

// SeedAdminUser creates the named admin account if it does not already
// exist. Used for first-run provisioning; a no-op when the user exists.
func (d *Database) SeedAdminUser(username, password string) error {
	if d == nil || d.db == nil {
		return errors.New("database is closed")
	}
	if username == "" || password == "" {
		return errors.New("seed username and password are required")
	}

	repo := NewUserRepository(d.db)
	existing, err := repo.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to check seed user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := models.NewUser(username, string(hash))
	if err := repo.Create(user); err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}

	return nil
}
