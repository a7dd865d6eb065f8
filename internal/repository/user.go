package repository

import (
	"context"
	"fmt"
	"time"

	"social-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SetField names one of the set-valued columns of an account.
type SetField int

const (
	SetFollowers SetField = iota
	SetFollowing
	SetLikedPosts
)

func (f SetField) column() (string, error) {
	switch f {
	case SetFollowers:
		return "followers", nil
	case SetFollowing:
		return "following", nil
	case SetLikedPosts:
		return "liked_posts", nil
	}
	return "", fmt.Errorf("unknown set field %d", f)
}

// UserRepository handles database operations for accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	AddToSet(ctx context.Context, id string, field SetField, value string) error
	RemoveFromSet(ctx context.Context, id string, field SetField, value string) error
	// Sample returns up to size random accounts other than excludeID.
	Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error)
}

type userRepo struct {
	db DBTX
}

const userColumns = `id, username, full_name, email, password_hash,
	followers::text[], following::text[], liked_posts::text[],
	profile_img, cover_img, bio, link, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
		&u.Followers, &u.Following, &u.LikedPosts,
		&u.ProfileImg, &u.CoverImg, &u.Bio, &u.Link, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new account with empty social sets
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Followers, user.Following, user.LikedPosts = []string{}, []string{}, []string{}

	query := `
		INSERT INTO users (id, username, full_name, email, password_hash, profile_img, cover_img, bio, link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash,
		user.ProfileImg, user.CoverImg, user.Bio, user.Link, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "failed to get user: %w")
	}
	return user, nil
}

// GetByIDForUpdate retrieves an account by ID and locks its row
func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "failed to lock user: %w")
	}
	return user, nil
}

// GetByUsername retrieves an account by its exact username
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, notFoundOr(err, "failed to get user by username: %w")
	}
	return user, nil
}

// GetByEmail retrieves an account by its exact email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFoundOr(err, "failed to get user by email: %w")
	}
	return user, nil
}

// Update replaces the profile fields and password hash of an account
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users
		SET username = $2, full_name = $3, email = $4, password_hash = $5,
		    profile_img = $6, cover_img = $7, bio = $8, link = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash,
		user.ProfileImg, user.CoverImg, user.Bio, user.Link, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToSet adds value to the named set column unless it is already present
func (r *userRepo) AddToSet(ctx context.Context, id string, field SetField, value string) error {
	column, err := field.column()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = CASE WHEN $2::uuid = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2::uuid) END,
		    updated_at = NOW()
		WHERE id = $1
	`, column)
	result, err := r.db.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to add to %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFromSet removes value from the named set column
func (r *userRepo) RemoveFromSet(ctx context.Context, id string, field SetField, value string) error {
	column, err := field.column()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = array_remove(%[1]s, $2::uuid), updated_at = NOW()
		WHERE id = $1
	`, column)
	result, err := r.db.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Sample draws a uniform random sample of accounts without replacement
func (r *userRepo) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY random() LIMIT $2`
	rows, err := r.db.Query(ctx, query, excludeID, size)
	if err != nil {
		return nil, fmt.Errorf("failed to sample users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
