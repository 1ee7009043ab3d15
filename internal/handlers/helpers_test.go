package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/middleware"
	"netowork_backend/internal/models"
	"netowork_backend/internal/validator"
	"netowork_backend/pkg/apperrors"
	"netowork_backend/pkg/contextkeys"
)

const testMaxFileSize = 64 * 1024

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func newTestCookies() CookieSettings {
	return CookieSettings{
		Codec:               auth.NewCookieCodec("handler-test-secret-handler-test-secret", "netowork"),
		SessionName:         "session",
		SessionTTL:          time.Hour,
		RegisteredEmailName: "registeredEmail",
		RegisteredEmailTTL:  time.Hour,
	}
}

func newTestBase() *BaseHandler {
	return NewBaseHandler(validator.New(), testMaxFileSize)
}

// newTestRouter возвращает роутер и группу /api/v1
func newTestRouter(t *testing.T) (*gin.Engine, *gin.RouterGroup) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.DBMiddleware(newTestDB(t)))
	return r, r.Group("/api/v1")
}

// fakeAuth подменяет AuthMiddleware: пользователь задается тестом
func fakeAuth(user **models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if *user == nil {
			apperrors.HandleError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Set(contextkeys.UserKey, *user)
		c.Set(contextkeys.SessionTokenKey, "session-token")
		c.Next()
	}
}

func userWithRole(id int64, role models.UserRole) *models.User {
	return &models.User{
		BaseModel:  models.BaseModel{ID: id},
		Email:      "user@example.com",
		FirstName:  "Ivan",
		LastName:   "Petrov",
		Role:       role,
		IsVerified: true,
	}
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		// клиент шлет application/octet-stream, тип определяется по содержимому
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// decodeData проверяет конверт success и разбирает data
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var body struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.Equal(t, apperrors.StatusSuccess, body.Status)
	if dst != nil {
		require.NoError(t, json.Unmarshal(body.Data, dst))
	}
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.Equal(t, apperrors.StatusError, body.Status)
	return body.Error
}

func decodeFieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body apperrors.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.Equal(t, apperrors.StatusError, body.Status)
	return body.Errors
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signed(t *testing.T, cookies CookieSettings, name, value string) *http.Cookie {
	t.Helper()
	raw, err := cookies.Codec.Encode(value, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: name, Value: raw}
}
