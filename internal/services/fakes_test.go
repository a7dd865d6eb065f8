package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory repository.Store. WithTx snapshots the data
// and restores it when fn fails.
type memStore struct {
	users         map[string]*models.User
	posts         map[string]*models.Post
	comments      []*models.Comment
	notifications map[string]*models.Notification

	clock           time.Time
	notificationErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*models.User{},
		posts:         map[string]*models.Post{},
		notifications: map[string]*models.Notification{},
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Users() repository.UserRepository                 { return memUsers{s} }
func (s *memStore) Posts() repository.PostRepository                 { return memPosts{s} }
func (s *memStore) Notifications() repository.NotificationRepository { return memNotifications{s} }

func (s *memStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	users := make(map[string]*models.User, len(s.users))
	for k, v := range s.users {
		users[k] = cloneUser(v)
	}
	posts := make(map[string]*models.Post, len(s.posts))
	for k, v := range s.posts {
		posts[k] = clonePost(v)
	}
	notifications := make(map[string]*models.Notification, len(s.notifications))
	for k, v := range s.notifications {
		c := *v
		notifications[k] = &c
	}
	comments := append([]*models.Comment(nil), s.comments...)

	if err := fn(s); err != nil {
		s.users, s.posts, s.notifications, s.comments = users, posts, notifications, comments
		return err
	}
	return nil
}

// addUser seeds an account with the given username and a fake hash of
// "password123".
func (s *memStore) addUser(username string) *models.User {
	u := &models.User{
		Username:     username,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Email:        username + "@example.com",
		PasswordHash: fakeHash("password123"),
	}
	if err := s.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return cloneUser(s.users[u.ID])
}

func (s *memStore) addPost(userID, text, img string) *models.Post {
	p := &models.Post{UserID: userID, Text: text, Img: img}
	if err := s.Posts().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return clonePost(s.posts[p.ID])
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = append([]string{}, u.Followers...)
	c.Following = append([]string{}, u.Following...)
	c.LikedPosts = append([]string{}, u.LikedPosts...)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = nil
	c.User = nil
	return &c
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Followers, user.Following, user.LikedPosts = []string{}, []string{}, []string{}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = r.s.tick()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r memUsers) set(id string, field repository.SetField) (*[]string, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch field {
	case repository.SetFollowers:
		return &u.Followers, nil
	case repository.SetFollowing:
		return &u.Following, nil
	case repository.SetLikedPosts:
		return &u.LikedPosts, nil
	}
	return nil, fmt.Errorf("unknown set field %d", field)
}

func (r memUsers) AddToSet(ctx context.Context, id string, field repository.SetField, value string) error {
	set, err := r.set(id, field)
	if err != nil {
		return err
	}
	for _, v := range *set {
		if v == value {
			return nil
		}
	}
	*set = append(*set, value)
	return nil
}

func (r memUsers) RemoveFromSet(ctx context.Context, id string, field repository.SetField, value string) error {
	set, err := r.set(id, field)
	if err != nil {
		return err
	}
	*set = without(*set, value)
	return nil
}

// Sample is deterministic here: accounts in username order.
func (r memUsers) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.s.users {
		if u.ID != excludeID {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

type memPosts struct{ s *memStore }

func (r memPosts) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := r.s.tick()
	post.CreatedAt, post.UpdatedAt = now, now
	post.Likes = []string{}
	post.Comments = []*models.Comment{}
	r.s.posts[post.ID] = clonePost(post)
	return nil
}

func (r memPosts) populate(p *models.Post) *models.Post {
	c := clonePost(p)
	if u, ok := r.s.users[p.UserID]; ok {
		c.User = u.Summary()
	}
	c.Comments = []*models.Comment{}
	for _, cm := range r.s.comments {
		if cm.PostID == p.ID {
			cc := *cm
			if u, ok := r.s.users[cm.UserID]; ok {
				cc.User = u.Summary()
			}
			c.Comments = append(c.Comments, &cc)
		}
	}
	return c
}

func (r memPosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.populate(p), nil
}

func (r memPosts) GetByIDForUpdate(ctx context.Context, id string) (*models.Post, error) {
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePost(p), nil
}

func (r memPosts) Delete(ctx context.Context, id string) error {
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	kept := r.s.comments[:0]
	for _, cm := range r.s.comments {
		if cm.PostID != id {
			kept = append(kept, cm)
		}
	}
	r.s.comments = kept
	return nil
}

func (r memPosts) AddComment(ctx context.Context, comment *models.Comment) error {
	if _, ok := r.s.posts[comment.PostID]; !ok {
		return errors.New("foreign key violation")
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = r.s.tick()
	c := *comment
	r.s.comments = append(r.s.comments, &c)
	return nil
}

func (r memPosts) AddLike(ctx context.Context, postID, userID string) error {
	p, ok := r.s.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	if !p.IsLikedBy(userID) {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

func (r memPosts) RemoveLike(ctx context.Context, postID, userID string) error {
	p, ok := r.s.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Likes = without(p.Likes, userID)
	return nil
}

func (r memPosts) filter(keep func(p *models.Post) bool) []*models.Post {
	out := []*models.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, r.populate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memPosts) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r memPosts) ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return containsID(authorIDs, p.UserID) }), nil
}

func (r memPosts) ListLikedBy(ctx context.Context, userID string, postIDs []string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		return containsID(postIDs, p.ID) && p.IsLikedBy(userID)
	}), nil
}

type memNotifications struct{ s *memStore }

func (r memNotifications) Create(ctx context.Context, n *models.Notification) error {
	if r.s.notificationErr != nil {
		return r.s.notificationErr
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := r.s.tick()
	n.CreatedAt, n.UpdatedAt = now, now
	n.Read = false
	c := *n
	r.s.notifications[n.ID] = &c
	return nil
}

func (r memNotifications) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r memNotifications) ListByRecipient(ctx context.Context, userID string) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.To != userID {
			continue
		}
		c := *n
		if u, ok := r.s.users[n.FromID]; ok {
			c.From = &models.UserSummary{ID: u.ID, Username: u.Username, ProfileImg: u.ProfileImg}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, userID string) error {
	for _, n := range r.s.notifications {
		if n.To == userID {
			n.Read = true
		}
	}
	return nil
}

func (r memNotifications) Delete(ctx context.Context, id string) error {
	if _, ok := r.s.notifications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r memNotifications) DeleteByRecipient(ctx context.Context, userID string) error {
	for id, n := range r.s.notifications {
		if n.To == userID {
			delete(r.s.notifications, id)
		}
	}
	return nil
}

func (s *memStore) notificationsFor(userID string) []*models.Notification {
	list, _ := s.Notifications().ListByRecipient(context.Background(), userID)
	return list
}

func containsID(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// fakeHasher avoids bcrypt's cost in service tests.
type fakeHasher struct{}

func fakeHash(plaintext string) string { return "hashed:" + plaintext }

func (fakeHasher) Hash(plaintext string) (string, error) { return fakeHash(plaintext), nil }

func (fakeHasher) Verify(plaintext, hash string) bool { return hash == fakeHash(plaintext) }

// fakeMedia records uploads and destroys.
type fakeMedia struct {
	uploaded   []string
	destroyed  []string
	uploadErr  error
	destroyErr error
}

func (m *fakeMedia) Upload(ctx context.Context, source string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploaded = append(m.uploaded, source)
	return fmt.Sprintf("https://media.example.com/media/img-%d.png", len(m.uploaded)), nil
}

func (m *fakeMedia) Destroy(ctx context.Context, publicID string) error {
	if m.destroyErr != nil {
		return m.destroyErr
	}
	m.destroyed = append(m.destroyed, publicID)
	return nil
}
