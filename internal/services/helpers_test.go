package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/session"
	"netowork_backend/internal/storage"
)

// newTestDB - *gorm.DB без подключения: репозитории в тестах подменены
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func directTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return fn(db)
}

type redisEnv struct {
	mr       *miniredis.Miniredis
	client   *redis.Client
	sessions *session.Store
	tokens   TokenStores
}

func newRedisEnv(t *testing.T) *redisEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	timeout := time.Second
	return &redisEnv{
		mr:       mr,
		client:   client,
		sessions: session.NewStore(client, time.Hour, timeout),
		tokens: TokenStores{
			Verification:    session.NewTokenStore(client, session.PurposeVerification, time.Hour, timeout),
			ResetPassword:   session.NewTokenStore(client, session.PurposeResetPassword, 15*time.Minute, timeout),
			NewEmail:        session.NewTokenStore(client, session.PurposeNewEmail, time.Hour, timeout),
			RegisteredEmail: session.NewTokenStore(client, session.PurposeRegisteredEmail, time.Hour, timeout),
		},
	}
}

func newTestUploader(t *testing.T) (*storage.Uploader, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(storage.Config{
		Type:     "local",
		BasePath: t.TempDir(),
		BaseURL:  "http://cdn.test",
	})
	require.NoError(t, err)
	return storage.NewUploader(local, time.Second), local
}

// ---------------- sender ----------------

type sentMail struct {
	To    string
	Name  string
	Token string
}

type recordingSender struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	err           error
}

func (s *recordingSender) SendVerification(_ context.Context, to, name, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.verifications = append(s.verifications, sentMail{To: to, Name: name, Token: token})
	return nil
}

func (s *recordingSender) SendPasswordReset(_ context.Context, to, name, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.resets = append(s.resets, sentMail{To: to, Name: name, Token: token})
	return nil
}

func (s *recordingSender) lastVerification(t *testing.T) sentMail {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.verifications)
	return s.verifications[len(s.verifications)-1]
}

// ---------------- notifier ----------------

type notification struct {
	UserID  int64
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(userID int64, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{UserID: userID, Event: event, Payload: payload})
}

func (n *recordingNotifier) recipients(event string) []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []int64
	for _, e := range n.events {
		if e.Event == event {
			ids = append(ids, e.UserID)
		}
	}
	return ids
}

// ---------------- user repository ----------------

// fakeUserRepo хранит пользователей в памяти
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64

	// число чтений с блокировкой строки
	lockedReads int
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) add(t *testing.T, u models.User, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u.Password = hash
	require.NoError(t, r.Create(nil, &u))
	return r.users[u.ID]
}

func (r *fakeUserRepo) get(id int64) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmailForUpdate(db *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	r.lockedReads++
	r.mu.Unlock()
	return r.FindByEmail(db, email)
}

func (r *fakeUserRepo) ExistsByEmail(db *gorm.DB, email string) (bool, error) {
	_, err := r.FindByEmail(db, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ *gorm.DB, id int64) error {
	return r.update(id, func(u *models.User) { u.IsVerified = true })
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, id int64, hash string) error {
	return r.update(id, func(u *models.User) { u.Password = hash })
}

func (r *fakeUserRepo) UpdateEmail(_ *gorm.DB, id int64, email string) error {
	return r.update(id, func(u *models.User) {
		u.Email = email
		u.IsVerified = false
	})
}

func (r *fakeUserRepo) UpdateProfile(_ *gorm.DB, id int64, fields map[string]interface{}) (*models.User, error) {
	err := r.update(id, func(u *models.User) {
		for k, v := range fields {
			switch k {
			case "email":
				u.Email = v.(string)
			case "is_verified":
				u.IsVerified = v.(bool)
			case "first_name":
				u.FirstName = v.(string)
			case "last_name":
				u.LastName = v.(string)
			case "about_me":
				s := v.(string)
				u.AboutMe = &s
			case "avatar":
				s := v.(string)
				u.Avatar = &s
			case "avatar_id":
				s := v.(string)
				u.AvatarID = &s
			}
		}
	})
	if err != nil {
		return nil, err
	}
	u := r.get(id)
	return &u, nil
}

func (r *fakeUserRepo) update(id int64, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(u)
	return nil
}
