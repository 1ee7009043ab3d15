package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netowork_backend/internal/models"
	"netowork_backend/internal/services/dto"
	"netowork_backend/pkg/apperrors"
)

func newUserRouter(t *testing.T, user *models.User) (*mockUserService, CookieSettings, http.Handler) {
	t.Helper()
	svc := &mockUserService{}
	cookies := newTestCookies()
	r, api := newTestRouter(t)
	current := &user
	NewUserHandler(newTestBase(), svc, cookies).RegisterRoutes(api, fakeAuth(current))
	return svc, cookies, r
}

func TestUserHandler_GetProfile(t *testing.T) {
	_, _, r := newUserRouter(t, userWithRole(3, models.UserRoleFreelancer))

	w := perform(r, jsonRequest(t, http.MethodGet, "/api/v1/users/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decodeData(t, w, &body)
	assert.Equal(t, float64(3), body["id"])
	assert.NotContains(t, body, "password")
}

func TestUserHandler_GetProfileRequiresSession(t *testing.T) {
	_, _, r := newUserRouter(t, nil)
	w := perform(r, jsonRequest(t, http.MethodGet, "/api/v1/users/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_UpdateProfileWithAvatar(t *testing.T) {
	svc, cookies, r := newUserRouter(t, userWithRole(3, models.UserRoleClient))

	var got *dto.UpdateProfileRequest
	var avatarBytes []byte
	svc.UpdateProfileFn = func(user *models.User, token string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error) {
		got = req
		assert.Equal(t, "session-token", token)
		if req.Avatar != nil {
			avatarBytes, _ = io.ReadAll(req.Avatar.Reader)
		}
		return &dto.UpdateProfileResult{User: user.Public()}, nil
	}

	img := pngBytes(t)
	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/profile",
		map[string]string{"firstName": "Pavel", "aboutMe": "Go developer"},
		formFile{field: "avatar", name: "me.bin", data: img},
	)
	w := perform(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, got)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Pavel", *got.FirstName)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, "image/png", got.Avatar.ContentType)
	assert.Equal(t, "me.bin", got.Avatar.Name)
	assert.Equal(t, img, avatarBytes, "reader must be rewound after type detection")

	assert.Nil(t, findCookie(w, cookies.SessionName))
}

func TestUserHandler_UpdateProfileEmailChangeClearsSession(t *testing.T) {
	svc, cookies, r := newUserRouter(t, userWithRole(3, models.UserRoleClient))
	svc.UpdateProfileFn = func(user *models.User, _ string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error) {
		pub := user.Public()
		pub.Email = *req.Email
		pub.IsVerified = false
		return &dto.UpdateProfileResult{User: pub, EmailChanged: true}, nil
	}

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/profile", map[string]string{"email": "new@example.com"})
	w := perform(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := findCookie(w, cookies.SessionName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestUserHandler_UpdateProfileFileTooLarge(t *testing.T) {
	svc, _, r := newUserRouter(t, userWithRole(3, models.UserRoleClient))
	svc.UpdateProfileFn = func(*models.User, string, *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	big := []byte(strings.Repeat("a", testMaxFileSize+1))
	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/profile", nil, formFile{field: "avatar", name: "big.png", data: big})
	w := perform(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ChangePassword(t *testing.T) {
	svc, _, r := newUserRouter(t, userWithRole(3, models.UserRoleClient))
	svc.ChangePasswordFn = func(_ *models.User, req *dto.ChangePasswordRequest) error {
		if req.OldPassword != "old-password" {
			return apperrors.ErrWrongOldPassword
		}
		return nil
	}

	w := perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/users/profile/change-password", map[string]string{
		"oldPassword": "wrong", "newPassword": "new-password",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/users/profile/change-password", map[string]string{
		"oldPassword": "old-password", "newPassword": "new-password",
	}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/users/profile/change-password", map[string]string{
		"oldPassword": "old-password", "newPassword": "short",
	}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeFieldErrors(t, w), "newPassword")
}
