package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/models"
	"netowork_backend/internal/services/dto"
	"netowork_backend/pkg/apperrors"
)

func newAuthRouter(t *testing.T) (*mockAuthService, CookieSettings, http.Handler, **models.User) {
	t.Helper()
	svc := &mockAuthService{}
	cookies := newTestCookies()
	r, api := newTestRouter(t)
	user := new(*models.User)
	NewAuthHandler(newTestBase(), svc, cookies).RegisterRoutes(api, fakeAuth(user))
	return svc, cookies, r, user
}

func validRegisterBody() map[string]any {
	return map[string]any{
		"email":     "alice@example.com",
		"password":  "password123",
		"firstName": "Alice",
		"lastName":  "Smith",
		"role":      "client",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)

	var got *dto.RegisterRequest
	svc.RegisterFn = func(req *dto.RegisterRequest) (*dto.RegisterResult, error) {
		got = req
		return &dto.RegisterResult{RegisteredEmailToken: "reg-token"}, nil
	}

	w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", validRegisterBody()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var msg string
	decodeData(t, w, &msg)
	assert.Equal(t, msgVerificationSent, msg)
	assert.Equal(t, models.UserRoleClient, got.Role)

	cookie := findCookie(w, cookies.RegisteredEmailName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	value, err := cookies.Codec.Decode(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "reg-token", value)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	svc, _, r, _ := newAuthRouter(t)
	svc.RegisterFn = func(*dto.RegisterRequest) (*dto.RegisterResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	body := validRegisterBody()
	body["email"] = "not-an-email"
	body["password"] = "short"
	body["role"] = "admin"

	w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", body))
	require.Equal(t, http.StatusBadRequest, w.Code)

	errs := decodeFieldErrors(t, w)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "role")
}

func TestAuthHandler_RegisterMailFailureKeepsCookie(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)
	svc.RegisterFn = func(*dto.RegisterRequest) (*dto.RegisterResult, error) {
		return &dto.RegisterResult{RegisteredEmailToken: "reg-token"}, apperrors.InternalError(errors.New("smtp down"))
	}

	w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", validRegisterBody()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong", decodeErr(t, w))
	assert.NotNil(t, findCookie(w, cookies.RegisteredEmailName))
}

func TestAuthHandler_Login(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)
	svc.LoginFn = func(req *dto.LoginRequest) (*dto.SessionResult, error) {
		if req.Password != "password123" {
			return nil, apperrors.ErrInvalidCredentials
		}
		return &dto.SessionResult{
			User:         models.PublicUser{ID: 5, Email: req.Email, Role: models.UserRoleFreelancer},
			SessionToken: "session-1",
		}, nil
	}

	t.Run("success", func(t *testing.T) {
		w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "bob@example.com", "password": "password123",
		}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var user models.PublicUser
		decodeData(t, w, &user)
		assert.Equal(t, int64(5), user.ID)

		cookie := findCookie(w, cookies.SessionName)
		require.NotNil(t, cookie)
		value, err := cookies.Codec.Decode(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "session-1", value)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "bob@example.com", "password": "nope",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, findCookie(w, cookies.SessionName))
	})
}

func TestAuthHandler_VerifyAccountClearsRegisteredCookie(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)
	svc.VerifyAccountFn = func(req *dto.VerifyAccountRequest) (*dto.SessionResult, error) {
		assert.Equal(t, "mail-token", req.Token)
		return &dto.SessionResult{User: models.PublicUser{ID: 1, IsVerified: true}, SessionToken: "s"}, nil
	}

	w := perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/auth/account-verification", map[string]string{"token": "mail-token"}))
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotNil(t, findCookie(w, cookies.SessionName))
	cleared := findCookie(w, cookies.RegisteredEmailName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthHandler_SendVerificationEmailUsesSignedCookie(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)
	var tokens []string
	svc.SendVerificationF = func(token string) error {
		tokens = append(tokens, token)
		if token == "" {
			return apperrors.ErrInvalidToken
		}
		return nil
	}

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/send-verification-email", nil)
	req.AddCookie(signed(t, cookies, cookies.RegisteredEmailName, "reg-token"))
	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// подпись другим ключом не принимается
	forged := newTestCookies()
	forged.Codec = auth.NewCookieCodec("another-secret-another-secret-another", "netowork")
	req = jsonRequest(t, http.MethodPost, "/api/v1/auth/send-verification-email", nil)
	req.AddCookie(signed(t, forged, cookies.RegisteredEmailName, "reg-token"))
	w = perform(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{"reg-token", ""}, tokens)
}

func TestAuthHandler_SetNewEmail(t *testing.T) {
	svc, cookies, r, _ := newAuthRouter(t)
	svc.SetNewEmailFn = func(token string, req *dto.SetNewEmailRequest) error {
		assert.Equal(t, "reg-token", token)
		if req.Email == "taken@example.com" {
			return apperrors.ErrEmailAlreadyExists
		}
		return nil
	}

	req := jsonRequest(t, http.MethodPatch, "/api/v1/auth/set-new-email-address", map[string]string{"email": "fixed@example.com"})
	req.AddCookie(signed(t, cookies, cookies.RegisteredEmailName, "reg-token"))
	assert.Equal(t, http.StatusOK, perform(r, req).Code)

	req = jsonRequest(t, http.MethodPatch, "/api/v1/auth/set-new-email-address", map[string]string{"email": "taken@example.com"})
	req.AddCookie(signed(t, cookies, cookies.RegisteredEmailName, "reg-token"))
	assert.Equal(t, http.StatusConflict, perform(r, req).Code)
}

func TestAuthHandler_ForgotAndResetPassword(t *testing.T) {
	svc, _, r, _ := newAuthRouter(t)
	svc.ForgotPasswordFn = func(*dto.ForgotPasswordRequest) error { return nil }
	svc.ResetPasswordFn = func(req *dto.ResetPasswordRequest) error {
		if req.Token != "good" {
			return apperrors.ErrInvalidToken
		}
		return nil
	}

	w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "nobody@example.com"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/auth/reset-password", map[string]string{"token": "bad", "password": "newpassword"}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, jsonRequest(t, http.MethodPatch, "/api/v1/auth/reset-password", map[string]string{"token": "good", "password": "newpassword"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	svc, cookies, r, user := newAuthRouter(t)

	w := perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	*user = userWithRole(1, models.UserRoleClient)
	w = perform(r, jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"session-token"}, svc.loggedOut)
	cleared := findCookie(w, cookies.SessionName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}
