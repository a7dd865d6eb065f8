package services

import (
	"context"
	"errors"
	"strings"

	"social-backend/internal/apperrors"
	"social-backend/internal/models"
	"social-backend/internal/repository"
)

const (
	// DefaultSuggestionLimit is how many suggested accounts are returned
	DefaultSuggestionLimit = 4
	// suggestionSampleSize is how many random accounts are drawn before
	// followed ones are filtered out.
	suggestionSampleSize = 10
)

// UpdateProfileInput is the request body for POST /api/users/update.
// Empty fields leave the stored value unchanged.
type UpdateProfileInput struct {
	FullName        string `json:"fullName" validate:"max=100"`
	Email           string `json:"email" validate:"max=254"`
	Username        string `json:"username" validate:"max=50"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"max=72"`
	Bio             string `json:"bio" validate:"max=500"`
	Link            string `json:"link" validate:"max=500"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
}

// FollowResult reports the outcome of a follow toggle
type FollowResult struct {
	Message   string `json:"message"`
	Following bool   `json:"following"`
}

// UserService handles profile, follow and suggestion logic
type UserService struct {
	store  repository.Store
	hasher PasswordHasher
	media  MediaHost
}

// NewUserService creates a new user service
func NewUserService(store repository.Store, hasher PasswordHasher, media MediaHost) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		media:  media,
	}
}

// GetByID returns the sanitized account with the given ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !isID(id) {
		return nil, apperrors.ErrUserNotFound
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}
	return user.Sanitized(), nil
}

// GetProfile returns the sanitized account with the given username
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}
	return user.Sanitized(), nil
}

// ToggleFollow makes actorID follow targetID, or unfollow when it already
// does. Both sides of the relation change in one transaction and a follow
// notification is created only on the follow branch.
func (s *UserService) ToggleFollow(ctx context.Context, actorID, targetID string) (*FollowResult, error) {
	if actorID == targetID {
		return nil, apperrors.ErrSelfFollow
	}
	if !isID(targetID) {
		return nil, apperrors.ErrUserNotFound
	}

	var result *FollowResult
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		users := tx.Users()

		actor, err := lockPair(ctx, users, actorID, targetID)
		if err != nil {
			return err
		}

		if actor.IsFollowing(targetID) {
			if err := users.RemoveFromSet(ctx, targetID, repository.SetFollowers, actorID); err != nil {
				return storeErr(err, apperrors.ErrUserNotFound)
			}
			if err := users.RemoveFromSet(ctx, actorID, repository.SetFollowing, targetID); err != nil {
				return storeErr(err, apperrors.ErrUserNotFound)
			}
			result = &FollowResult{Message: "User unfollowed successfully", Following: false}
			return nil
		}

		if err := users.AddToSet(ctx, targetID, repository.SetFollowers, actorID); err != nil {
			return storeErr(err, apperrors.ErrUserNotFound)
		}
		if err := users.AddToSet(ctx, actorID, repository.SetFollowing, targetID); err != nil {
			return storeErr(err, apperrors.ErrUserNotFound)
		}

		notification := &models.Notification{
			FromID: actorID,
			To:     targetID,
			Type:   models.NotificationFollow,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return apperrors.Internal(err)
		}

		result = &FollowResult{Message: "User followed successfully", Following: true}
		return nil
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return result, nil
}

// lockPair locks both account rows in ID order so that two opposite
// toggles cannot deadlock, and returns the actor.
func lockPair(ctx context.Context, users repository.UserRepository, actorID, targetID string) (*models.User, error) {
	firstID, secondID := actorID, targetID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	first, err := users.GetByIDForUpdate(ctx, firstID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}
	second, err := users.GetByIDForUpdate(ctx, secondID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	if first.ID == actorID {
		return first, nil
	}
	return second, nil
}

// Suggest returns up to limit random accounts the actor does not follow yet.
// It may return fewer when most of the sample is already followed.
func (s *UserService) Suggest(ctx context.Context, actorID string, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	users := s.store.Users()

	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	sample, err := users.Sample(ctx, actorID, suggestionSampleSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	suggested := make([]*models.User, 0, limit)
	for _, candidate := range sample {
		if actor.IsFollowing(candidate.ID) {
			continue
		}
		suggested = append(suggested, candidate.Sanitized())
		if len(suggested) == limit {
			break
		}
	}
	return suggested, nil
}

// UpdateProfile applies the non-empty fields of in to the actor's account.
// A password change needs both the current and the new password.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, in UpdateProfileInput) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	users := s.store.Users()

	user, err := users.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	// Password change
	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, apperrors.Validation("Please provide both current and new password")
	}
	if in.CurrentPassword != "" {
		if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
			return nil, apperrors.Validation("Current password is incorrect")
		}
		if len(in.NewPassword) < MinPasswordLength {
			return nil, apperrors.Validation("Password must be at least 6 characters long")
		}
		if len(in.NewPassword) > MaxPasswordBytes {
			return nil, apperrors.Validation("Password must be at most 72 bytes long")
		}
		hash, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = hash
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, apperrors.Validation("invalid email format")
	}
	username := strings.TrimSpace(in.Username)

	// Uniqueness is settled before any hosted image is touched
	if err := s.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return nil, err
	}

	// Images replace the previously hosted ones
	if in.ProfileImg != "" {
		url, err := s.replaceImage(ctx, user.ProfileImg, in.ProfileImg)
		if err != nil {
			return nil, err
		}
		user.ProfileImg = url
	}
	if in.CoverImg != "" {
		url, err := s.replaceImage(ctx, user.CoverImg, in.CoverImg)
		if err != nil {
			return nil, err
		}
		user.CoverImg = url
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		user.FullName = v
	}
	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Link != "" {
		user.Link = in.Link
	}

	if err := users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("username or email is already taken")
		}
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	return user.Sanitized(), nil
}

// ensureAvailable fails with a conflict when username or email already
// belongs to an account other than ownerID. Empty values are skipped.
func (s *UserService) ensureAvailable(ctx context.Context, ownerID, username, email string) error {
	users := s.store.Users()

	if username != "" {
		if other, err := users.GetByUsername(ctx, username); err == nil {
			if other.ID != ownerID {
				return apperrors.Conflict("username or email is already taken")
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(err)
		}
	}

	if email != "" {
		if other, err := users.GetByEmail(ctx, email); err == nil {
			if other.ID != ownerID {
				return apperrors.Conflict("username or email is already taken")
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(err)
		}
	}
	return nil
}

func (s *UserService) replaceImage(ctx context.Context, oldURL, source string) (string, error) {
	if oldURL != "" {
		if err := s.media.Destroy(ctx, PublicIDFromURL(oldURL)); err != nil {
			return "", apperrors.Internal(err)
		}
	}

	url, err := s.media.Upload(ctx, source)
	if err != nil {
		return "", mediaErr(err)
	}
	return url, nil
}
