package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate")
)

// DBTX is the subset of pgx used by the repositories.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store hands out repositories bound to either the pool or a transaction.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Notifications() NotificationRepository

	// WithTx runs fn inside a single transaction. The Store passed to fn is
	// bound to that transaction; fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewStore creates a Postgres-backed store
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository {
	return &userRepo{db: s.db}
}

func (s *pgStore) Posts() PostRepository {
	return &postRepo{db: s.db}
}

func (s *pgStore) Notifications() NotificationRepository {
	return &notificationRepo{db: s.db}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	// Nested calls reuse the outer transaction.
	if _, inTx := s.db.(pgx.Tx); inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(&pgStore{pool: s.pool, db: tx})
}

func isUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

func notFoundOr(err error, format string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf(format, err)
}
