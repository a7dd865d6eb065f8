package services

import (
	"context"
	"strings"

	"social-backend/internal/apperrors"
	"social-backend/internal/models"
	"social-backend/internal/repository"
)

// CreatePostInput is the request body for POST /api/posts/create
type CreatePostInput struct {
	Text string `json:"text" validate:"max=2000"`
	Img  string `json:"img"`
}

// CommentInput is the request body for POST /api/posts/comment/{id}
type CommentInput struct {
	Text string `json:"text" validate:"max=1000"`
}

// PostService handles post, comment and like logic
type PostService struct {
	store repository.Store
	media MediaHost
}

// NewPostService creates a new post service
func NewPostService(store repository.Store, media MediaHost) *PostService {
	return &PostService{
		store: store,
		media: media,
	}
}

// Create publishes a post authored by actorID
func (s *PostService) Create(ctx context.Context, actorID string, in CreatePostInput) (*models.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && in.Img == "" {
		return nil, apperrors.Validation("Post must have text or image")
	}

	author, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	// Upload image
	var img string
	if in.Img != "" {
		img, err = s.media.Upload(ctx, in.Img)
		if err != nil {
			return nil, mediaErr(err)
		}
	}

	post := &models.Post{
		UserID: author.ID,
		Text:   text,
		Img:    img,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, apperrors.Internal(err)
	}
	post.User = author.Summary()

	return post, nil
}

// Delete removes a post owned by actorID together with its hosted image
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	if !isID(postID) {
		return apperrors.ErrPostNotFound
	}

	posts := s.store.Posts()

	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return storeErr(err, apperrors.ErrPostNotFound)
	}

	if post.UserID != actorID {
		return apperrors.Forbidden("You are not authorized to delete this post")
	}

	if post.Img != "" {
		// The post stays in place when its image cannot be removed
		if err := s.media.Destroy(ctx, PublicIDFromURL(post.Img)); err != nil {
			return apperrors.Internal(err)
		}
	}

	if err := posts.Delete(ctx, postID); err != nil {
		return storeErr(err, apperrors.ErrPostNotFound)
	}
	return nil
}

// Comment appends a comment by actorID and returns the updated post
func (s *PostService) Comment(ctx context.Context, actorID, postID string, in CommentInput) (*models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperrors.Validation("Text is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !isID(postID) {
		return nil, apperrors.ErrPostNotFound
	}

	posts := s.store.Posts()

	if _, err := posts.GetByID(ctx, postID); err != nil {
		return nil, storeErr(err, apperrors.ErrPostNotFound)
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: actorID,
		Text:   text,
	}
	if err := posts.AddComment(ctx, comment); err != nil {
		return nil, apperrors.Internal(err)
	}

	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrPostNotFound)
	}
	return post, nil
}

// ToggleLike likes the post for actorID, or unlikes it when already liked,
// and returns the post's resulting like set. The post's likes and the
// actor's liked posts change together.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID string) ([]string, error) {
	if !isID(postID) {
		return nil, apperrors.ErrPostNotFound
	}

	var likes []string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		posts, users := tx.Posts(), tx.Users()

		post, err := posts.GetByIDForUpdate(ctx, postID)
		if err != nil {
			return storeErr(err, apperrors.ErrPostNotFound)
		}

		if post.IsLikedBy(actorID) {
			if err := posts.RemoveLike(ctx, postID, actorID); err != nil {
				return storeErr(err, apperrors.ErrPostNotFound)
			}
			if err := users.RemoveFromSet(ctx, actorID, repository.SetLikedPosts, postID); err != nil {
				return storeErr(err, apperrors.ErrUserNotFound)
			}
			likes = without(post.Likes, actorID)
			return nil
		}

		if err := posts.AddLike(ctx, postID, actorID); err != nil {
			return storeErr(err, apperrors.ErrPostNotFound)
		}
		if err := users.AddToSet(ctx, actorID, repository.SetLikedPosts, postID); err != nil {
			return storeErr(err, apperrors.ErrUserNotFound)
		}

		notification := &models.Notification{
			FromID: actorID,
			To:     post.UserID,
			Type:   models.NotificationLike,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return apperrors.Internal(err)
		}

		likes = append(append(make([]string, 0, len(post.Likes)+1), post.Likes...), actorID)
		return nil
	})
	if err != nil {
		return nil, apperrors.From(err)
	}
	return likes, nil
}

// All returns every post, newest first
func (s *PostService) All(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.store.Posts().ListAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return posts, nil
}

// Following returns posts by the accounts actorID follows, newest first
func (s *PostService) Following(ctx context.Context, actorID string) ([]*models.Post, error) {
	actor, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	posts, err := s.store.Posts().ListByAuthors(ctx, actor.Following)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return posts, nil
}

// Liked returns the posts liked by userID
func (s *PostService) Liked(ctx context.Context, userID string) ([]*models.Post, error) {
	if !isID(userID) {
		return nil, apperrors.ErrUserNotFound
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	posts, err := s.store.Posts().ListLikedBy(ctx, user.ID, user.LikedPosts)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return posts, nil
}

// ByUser returns the posts authored by username, newest first
func (s *PostService) ByUser(ctx context.Context, username string) ([]*models.Post, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	posts, err := s.store.Posts().ListByAuthors(ctx, []string{user.ID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return posts, nil
}

func without(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
