package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/models"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

func pngFile(t *testing.T, name string) storage.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return storage.File{
		Name:        name,
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Reader:      bytes.NewReader(buf.Bytes()),
	}
}

func strPtr(s string) *string { return &s }

type userFixture struct {
	svc    UserService
	users  *fakeUserRepo
	env    *redisEnv
	sender *recordingSender
	local  *storage.LocalStorage
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	env := newRedisEnv(t)
	users := newFakeUserRepo()
	sender := &recordingSender{}
	uploader, local := newTestUploader(t)
	svc := NewUserService(users, env.sessions, env.tokens.NewEmail, sender, uploader, imageprocessor.NewProcessor(80, 256))
	return &userFixture{svc: svc, users: users, env: env, sender: sender, local: local}
}

func (f *userFixture) verifiedUser(t *testing.T, email string) *models.User {
	t.Helper()
	return f.users.add(t, models.User{
		Email:      email,
		FirstName:  "Ivan",
		LastName:   "Petrov",
		Role:       models.UserRoleFreelancer,
		IsVerified: true,
	}, "password123")
}

func TestUserService_UpdateProfile_Empty(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	_, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestUserService_UpdateProfile_Names(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	res, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{
		FirstName: strPtr("  Pyotr "),
		AboutMe:   strPtr("Go developer"),
	})
	require.NoError(t, err)

	assert.False(t, res.EmailChanged)
	assert.Equal(t, "Pyotr", res.User.FirstName)
	stored := f.users.get(user.ID)
	assert.Equal(t, "Pyotr", stored.FirstName)
	require.NotNil(t, stored.AboutMe)
	assert.Equal(t, "Go developer", *stored.AboutMe)
	assert.True(t, stored.IsVerified)
}

func TestUserService_UpdateProfile_SameEmailIsNoop(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	res, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{
		Email: strPtr("IVAN@example.com"),
	})
	require.NoError(t, err)
	assert.False(t, res.EmailChanged)
	assert.Empty(t, f.sender.verifications)
}

func TestUserService_UpdateProfile_EmailChange(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	token, err := f.env.sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	res, err := f.svc.UpdateProfile(ctx, newTestDB(t), user, token, &dto.UpdateProfileRequest{
		Email: strPtr("new@example.com"),
	})
	require.NoError(t, err)
	assert.True(t, res.EmailChanged)

	stored := f.users.get(user.ID)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.False(t, stored.IsVerified)

	// сессия отозвана
	_, err = f.env.sessions.Lookup(ctx, token)
	assert.Error(t, err)

	mail := f.sender.lastVerification(t)
	assert.Equal(t, "new@example.com", mail.To)
	owner, err := f.env.tokens.NewEmail.Get(ctx, mail.Token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", owner)
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")
	f.verifiedUser(t, "taken@example.com")

	_, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{
		Email: strPtr("taken@example.com"),
	})
	assertHTTPCode(t, err, http.StatusConflict)
	assert.Equal(t, "ivan@example.com", f.users.get(user.ID).Email)
}

func TestUserService_UpdateProfile_Avatar(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	avatar := pngFile(t, "me.png")
	res, err := f.svc.UpdateProfile(ctx, newTestDB(t), user, "token", &dto.UpdateProfileRequest{Avatar: &avatar})
	require.NoError(t, err)

	stored := f.users.get(user.ID)
	require.NotNil(t, stored.AvatarID)
	assert.True(t, strings.HasPrefix(*stored.AvatarID, "avatars/"))
	assert.True(t, strings.HasSuffix(*stored.AvatarID, ".jpg"))
	require.NotNil(t, res.User.Avatar)
	assert.Equal(t, "http://cdn.test/"+*stored.AvatarID, *res.User.Avatar)

	exists, err := f.local.Exists(ctx, *stored.AvatarID)
	require.NoError(t, err)
	assert.True(t, exists)

	// замена аватара удаляет предыдущий файл
	oldKey := *stored.AvatarID
	second := pngFile(t, "me2.png")
	_, err = f.svc.UpdateProfile(ctx, newTestDB(t), &stored, "token", &dto.UpdateProfileRequest{Avatar: &second})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ok, _ := f.local.Exists(ctx, oldKey)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestUserService_UpdateProfile_AvatarWrongType(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	avatar := storage.File{Name: "cv.pdf", ContentType: "application/pdf", Reader: strings.NewReader("%PDF")}
	_, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{Avatar: &avatar})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
}

func TestUserService_UpdateProfile_AvatarUndecodable(t *testing.T) {
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	avatar := storage.File{Name: "me.png", ContentType: "image/png", Reader: strings.NewReader("not an image")}
	_, err := f.svc.UpdateProfile(context.Background(), newTestDB(t), user, "token", &dto.UpdateProfileRequest{Avatar: &avatar})
	assertHTTPCode(t, err, http.StatusBadRequest)
	assert.Nil(t, f.users.get(user.ID).AvatarID)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	user := f.verifiedUser(t, "ivan@example.com")

	err := f.svc.ChangePassword(ctx, newTestDB(t), user, &dto.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, apperrors.ErrWrongOldPassword)

	err = f.svc.ChangePassword(ctx, newTestDB(t), user, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword1",
	})
	require.NoError(t, err)

	ok, err := auth.CheckPasswordHash("newpassword1", f.users.get(user.ID).Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_SeedAdmin(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.svc.SeedAdmin(ctx, newTestDB(t), " Admin@Example.com ", "adminpass1"))
	require.NoError(t, f.svc.SeedAdmin(ctx, newTestDB(t), "admin@example.com", "other-pass"))

	admin, err := f.users.FindByEmail(nil, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)
	assert.True(t, admin.IsVerified)
	assert.Len(t, f.users.users, 1)

	ok, err := auth.CheckPasswordHash("adminpass1", admin.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}
