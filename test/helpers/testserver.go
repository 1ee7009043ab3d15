package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"netowork_backend/database"
	"netowork_backend/internal/app"
	"netowork_backend/internal/config"
	"netowork_backend/internal/services"
	"netowork_backend/internal/storage"
	"netowork_backend/ws"
)

// TestServer - приложение целиком поверх тестовой базы и miniredis
type TestServer struct {
	Server     *httptest.Server
	DB         *gorm.DB
	Redis      *miniredis.Miniredis
	Services   *services.ServiceContainer
	SessionTTL time.Duration
}

// NewTestServer поднимает сервер на базе из TEST_DATABASE_URL.
// Без переменной тест пропускается.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.Env = config.EnvTest
	cfg.Database.DSN = dsn
	cfg.Auth.CookieSecret = "integration-secret-integration-secret"
	cfg.Email.Disabled = true
	cfg.Storage.BasePath = t.TempDir()

	db, err := database.Open(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	TruncateAll(t, db)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store, err := storage.NewStorage(ctx, storage.ConfigFrom(cfg))
	require.NoError(t, err)

	deps := &app.Infra{DB: db, Redis: redisClient, Storage: store}

	runCtx, cancel := context.WithCancel(ctx)
	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(runCtx)

	container := app.NewServices(cfg, deps, wsManager)
	router := app.SetupRouter(cfg, deps, container, wsManager)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
		deps.Close()
	})

	return &TestServer{Server: server, DB: db, Redis: mr, Services: container, SessionTTL: cfg.SessionTTL()}
}

// TruncateAll очищает все таблицы, кроме справочника категорий
func TruncateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`TRUNCATE work_images, works, messages, chats, task_replies, task_views, task_files, tasks, users RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
}

// Client - браузер с собственной cookie-сессией
type Client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (ts *TestServer) NewClient(t *testing.T) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Client{t: t, base: ts.Server.URL, http: &http.Client{Jar: jar}}
}

// Response - разобранный ответ в общем конверте
type Response struct {
	Code   int
	Status string            `json:"status"`
	Data   json.RawMessage   `json:"data"`
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

// DecodeData разбирает поле data в dst
func (r *Response) DecodeData(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

// Do отправляет JSON-запрос (body == nil - без тела)
func (c *Client) Do(method, path string, body any) *Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// DoForm отправляет multipart-форму без файлов
func (c *Client) DoForm(method, path string, fields map[string]string) *Response {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *Client) send(req *http.Request) *Response {
	c.t.Helper()

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	res := &Response{Code: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, res), string(raw))
	}
	return res
}

// TokenFor ищет в Redis токен нужного назначения, выданный на email
func (ts *TestServer) TokenFor(t *testing.T, purpose, email string) string {
	t.Helper()
	prefix := purpose + ":"
	for _, key := range ts.Redis.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		value, err := ts.Redis.Get(key)
		if err == nil && value == email {
			return strings.TrimPrefix(key, prefix)
		}
	}
	t.Fatalf("no %s token for %s", purpose, email)
	return ""
}

// RegisterVerified регистрирует пользователя, подтверждает почту и входит
func (ts *TestServer) RegisterVerified(t *testing.T, role, email string) *Client {
	t.Helper()
	c := ts.NewClient(t)

	res := c.Do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"firstName": "Test",
		"lastName":  "User",
		"email":     email,
		"password":  "password123",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Error)

	token := ts.TokenFor(t, "verification", email)
	res = c.Do(http.MethodPatch, "/api/v1/auth/account-verification", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, res.Code, res.Error)
	return c
}
