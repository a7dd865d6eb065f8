package models

import "time"

// User represents an account in the system.
// PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	LikedPosts   []string  `json:"likedPosts"`
	ProfileImg   string    `json:"profileImg"`
	CoverImg     string    `json:"coverImg"`
	Bio          string    `json:"bio"`
	Link         string    `json:"link"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsFollowing reports whether u follows the account with the given id.
func (u *User) IsFollowing(id string) bool {
	return contains(u.Following, id)
}

// Sanitized returns a copy of u without the password hash.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// Summary returns the public identity fields of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// UserSummary is the populated form of a user reference inside posts,
// comments and notifications.
type UserSummary struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName,omitempty"`
	ProfileImg string `json:"profileImg"`
}

// Post represents a text and/or image post
type Post struct {
	ID        string       `json:"_id"`
	UserID    string       `json:"-"`
	User      *UserSummary `json:"user,omitempty"`
	Text      string       `json:"text,omitempty"`
	Img       string       `json:"img,omitempty"`
	Likes     []string     `json:"likes"`
	Comments  []*Comment   `json:"comments"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsLikedBy reports whether the account with the given id likes p.
func (p *Post) IsLikedBy(id string) bool {
	return contains(p.Likes, id)
}

// Comment is a single entry in a post's comment thread
type Comment struct {
	ID        string       `json:"_id"`
	PostID    string       `json:"-"`
	UserID    string       `json:"-"`
	User      *UserSummary `json:"user,omitempty"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NotificationType enumerates the events that notify a user.
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification records that something happened to its recipient.
type Notification struct {
	ID        string           `json:"_id"`
	FromID    string           `json:"-"`
	From      *UserSummary     `json:"from,omitempty"`
	To        string           `json:"to"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
