package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieCodec подписывает и проверяет значения cookie
type CookieCodec interface {
	Encode(value string, ttl time.Duration) (string, error)
	Decode(raw string) (string, error)
}

// SessionCookie - cookie сессии. Срок в ней совпадает с TTL сессии в Redis
// и сдвигается вместе с ним на каждом авторизованном запросе.
type SessionCookie struct {
	Codec  CookieCodec
	Name   string
	TTL    time.Duration
	Secure bool
}

// Write подписывает токен и ставит cookie со сроком TTL
func (s SessionCookie) Write(c *gin.Context, token string) error {
	signed, err := s.Codec.Encode(token, s.TTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, signed, int(s.TTL.Seconds()), "/", "", s.Secure, true)
	return nil
}

// Read возвращает токен без подписи
func (s SessionCookie) Read(c *gin.Context) (string, bool, error) {
	raw, err := c.Cookie(s.Name)
	if err != nil || raw == "" {
		return "", false, nil
	}
	token, err := s.Codec.Decode(raw)
	if err != nil {
		return "", true, err
	}
	return token, true, nil
}
