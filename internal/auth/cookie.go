package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("auth: invalid cookie value")

// CookieCodec подписывает значения cookie (HS256), чтобы их нельзя было подделать.
// Срок жизни самих сессий и токенов контролирует Redis, exp в cookie
// только не дает браузеру держать ее дольше.
type CookieCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewCookieCodec(secret, issuer string) *CookieCodec {
	return NewCookieCodecWithClock(secret, issuer, time.Now)
}

// NewCookieCodecWithClock - то же с подменяемыми часами для тестов
func NewCookieCodecWithClock(secret, issuer string, now func() time.Time) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), issuer: issuer, now: now}
}

// Encode упаковывает значение в подписанный токен
func (c *CookieCodec) Encode(value string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   value,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign cookie: %w", err)
	}
	return signed, nil
}

// Decode проверяет подпись и срок и возвращает исходное значение
func (c *CookieCodec) Decode(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidCookie
	}
	return claims.Subject, nil
}
