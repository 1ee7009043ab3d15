package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/config"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/middleware"
)

// CookieSettings - имена и сроки cookie сессии и registered-email
type CookieSettings struct {
	Codec               *auth.CookieCodec
	SessionName         string
	SessionTTL          time.Duration
	RegisteredEmailName string
	RegisteredEmailTTL  time.Duration
	Secure              bool
}

func NewCookieSettings(cfg *config.Config, codec *auth.CookieCodec) CookieSettings {
	return CookieSettings{
		Codec:               codec,
		SessionName:         cfg.Auth.CookieName,
		SessionTTL:          cfg.SessionTTL(),
		RegisteredEmailName: cfg.Auth.RegisteredEmailCookie,
		RegisteredEmailTTL:  cfg.RegisteredEmailTTL(),
		Secure:              cfg.IsProduction(),
	}
}

// Session - те же параметры в виде, который перевыпускает AuthMiddleware
func (s CookieSettings) Session() middleware.SessionCookie {
	return middleware.SessionCookie{
		Codec:  s.Codec,
		Name:   s.SessionName,
		TTL:    s.SessionTTL,
		Secure: s.Secure,
	}
}

func (s CookieSettings) setSession(c *gin.Context, token string) error {
	return s.Session().Write(c, token)
}

func (s CookieSettings) setRegisteredEmail(c *gin.Context, token string) error {
	return s.set(c, s.RegisteredEmailName, token, s.RegisteredEmailTTL)
}

func (s CookieSettings) set(c *gin.Context, name, value string, ttl time.Duration) error {
	signed, err := s.Codec.Encode(value, ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, signed, int(ttl.Seconds()), "/", "", s.Secure, true)
	return nil
}

func (s CookieSettings) clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", s.Secure, true)
}

// read возвращает исходное значение подписанной cookie; пустая строка, если ее нет или она подделана
func (s CookieSettings) read(c *gin.Context, name string) string {
	raw, err := c.Cookie(name)
	if err != nil || raw == "" {
		return ""
	}
	value, err := s.Codec.Decode(raw)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Invalid signed cookie", "cookie", name)
		return ""
	}
	return value
}
