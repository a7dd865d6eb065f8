package repository

import (
	"context"
	"fmt"
	"time"

	"social-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostRepository handles database operations for posts and their comments
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID returns the post with its author and comment thread populated.
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// GetByIDForUpdate returns the bare post row and locks it.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *models.Comment) error
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error)
	// ListLikedBy returns posts among postIDs whose like set contains userID.
	ListLikedBy(ctx context.Context, userID string, postIDs []string) ([]*models.Post, error)
}

type postRepo struct {
	db DBTX
}

const postSelect = `
	SELECT p.id, p.user_id, p.text, p.img, p.likes::text[], p.created_at, p.updated_at,
	       u.username, u.full_name, u.profile_img
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	author := &models.UserSummary{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Text, &p.Img, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
		&author.Username, &author.FullName, &author.ProfileImg,
	)
	if err != nil {
		return nil, err
	}
	author.ID = p.UserID
	p.User = author
	p.Comments = []*models.Comment{}
	return &p, nil
}

// Create creates a new post with an empty like set
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	post.CreatedAt, post.UpdatedAt = now, now
	post.Likes = []string{}
	post.Comments = []*models.Comment{}

	query := `
		INSERT INTO posts (id, user_id, text, img, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, post.ID, post.UserID, post.Text, post.Img, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a populated post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "failed to get post: %w")
	}
	if err := r.attachComments(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// GetByIDForUpdate retrieves a post row by ID and locks it
func (r *postRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT id, user_id, text, img, likes::text[], created_at, updated_at
		FROM posts
		WHERE id = $1
		FOR UPDATE
	`
	var p models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Text, &p.Img, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "failed to lock post: %w")
	}
	return &p, nil
}

// Delete deletes a post by ID; its comments cascade
func (r *postRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment appends a comment to a post's thread
func (r *postRepo) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now()

	query := `
		INSERT INTO comments (id, post_id, user_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, comment.ID, comment.PostID, comment.UserID, comment.Text, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// AddLike adds userID to the post's like set unless already present
func (r *postRepo) AddLike(ctx context.Context, postID, userID string) error {
	query := `
		UPDATE posts
		SET likes = CASE WHEN $2::uuid = ANY(likes) THEN likes ELSE array_append(likes, $2::uuid) END,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveLike removes userID from the post's like set
func (r *postRepo) RemoveLike(ctx context.Context, postID, userID string) error {
	query := `UPDATE posts SET likes = array_remove(likes, $2::uuid), updated_at = NOW() WHERE id = $1`
	result, err := r.db.Exec(ctx, query, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every post, newest first
func (r *postRepo) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, postSelect+` ORDER BY p.created_at DESC`)
}

// ListByAuthors returns posts written by any of authorIDs, newest first
func (r *postRepo) ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	return r.list(ctx, postSelect+` WHERE p.user_id = ANY($1::uuid[]) ORDER BY p.created_at DESC`, authorIDs)
}

// ListLikedBy returns posts in postIDs that userID currently likes
func (r *postRepo) ListLikedBy(ctx context.Context, userID string, postIDs []string) ([]*models.Post, error) {
	if len(postIDs) == 0 {
		return []*models.Post{}, nil
	}
	return r.list(ctx,
		postSelect+` WHERE p.id = ANY($1::uuid[]) AND $2::uuid = ANY(p.likes) ORDER BY p.created_at DESC`,
		postIDs, userID,
	)
}

func (r *postRepo) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	if err := r.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachComments loads the comment threads of posts in one query.
func (r *postRepo) attachComments(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.text, c.created_at,
		       u.username, u.full_name, u.profile_img
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		author := &models.UserSummary{}
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt,
			&author.Username, &author.FullName, &author.ProfileImg,
		); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		author.ID = c.UserID
		c.User = author
		if p, ok := byID[c.PostID]; ok {
			p.Comments = append(p.Comments, &c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating comments: %w", err)
	}
	return nil
}
