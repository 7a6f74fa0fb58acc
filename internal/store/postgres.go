package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/isdelr/placeit-be/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps users in a PostgreSQL table migrated by goose.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgresStore. The schema must already be migrated.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new user row; the database assigns ID and created_at.
func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&id, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	return nil
}

// FindByEmail retrieves a single user by email, including the password hash.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
	return scanPostgresUser(row)
}

// FindByID retrieves a single user by ID. Malformed IDs match nothing.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, uid)
	return scanPostgresUser(row)
}

func scanPostgresUser(row *sql.Row) (models.User, error) {
	var (
		user models.User
		id   uuid.UUID
	)
	if err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("store: scan user: %w", err)
	}
	user.ID = id.String()
	return user, nil
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Name implements UserStore.
func (s *PostgresStore) Name() string { return "postgres" }

var _ UserStore = (*PostgresStore)(nil)
