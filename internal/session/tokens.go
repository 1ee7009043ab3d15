package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Purpose - отдельное пространство ключей для токенов одного назначения
type Purpose string

const (
	PurposeVerification    Purpose = "verification"
	PurposeResetPassword   Purpose = "reset-password"
	PurposeNewEmail        Purpose = "new-email"
	PurposeRegisteredEmail Purpose = "registered-email"
)

// TokenStore - одноразовые токены token -> email с фиксированным TTL
type TokenStore struct {
	client  *redis.Client
	purpose Purpose
	ttl     time.Duration
	timeout time.Duration
}

func NewTokenStore(client *redis.Client, purpose Purpose, ttl, timeout time.Duration) *TokenStore {
	return &TokenStore{client: client, purpose: purpose, ttl: ttl, timeout: timeout}
}

func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue создает новый токен для email
func (s *TokenStore) Issue(ctx context.Context, email string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(token), email, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue %s token: %w", s.purpose, err)
	}
	return token, nil
}

// Get читает email без удаления токена
func (s *TokenStore) Get(ctx context.Context, token string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	email, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s token: %w", s.purpose, err)
	}
	return email, nil
}

// Consume атомарно читает и удаляет токен
func (s *TokenStore) Consume(ctx context.Context, token string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	email, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume %s token: %w", s.purpose, err)
	}
	return email, nil
}

// Replace перезаписывает email у существующего токена, сохраняя остаток TTL
func (s *TokenStore) Replace(ctx context.Context, token, email string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.client.SetXX(ctx, s.key(token), email, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("replace %s token: %w", s.purpose, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete %s token: %w", s.purpose, err)
	}
	return nil
}

func (s *TokenStore) key(token string) string {
	return string(s.purpose) + ":" + token
}
