package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix      = "session:"
	userSessionsPrefix = "user-sessions:"
)

// Store - сессии пользователей со скользящим TTL.
// Токен сессии отображается в id пользователя, у каждого пользователя
// есть множество его токенов для массового отзыва.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewStore(client *redis.Client, ttl, timeout time.Duration) *Store {
	return &Store{client: client, ttl: ttl, timeout: timeout}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create записывает новую сессию и возвращает ее токен
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	setKey := userSessionsKey(userID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(token), strconv.FormatInt(userID, 10), s.ttl)
	pipe.SAdd(ctx, setKey, token)
	pipe.Expire(ctx, setKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Lookup возвращает id пользователя и продлевает TTL сессии (GETEX)
// вместе с TTL множества сессий пользователя
func (s *Store) Lookup(ctx context.Context, token string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.GetEx(ctx, sessionKey(token), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupted session value: %w", err)
	}

	// индекс сессий пользователя живет не меньше самой свежей сессии,
	// иначе DeleteAllForUser не увидит продленные токены
	setKey := userSessionsKey(userID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, setKey, token)
	pipe.Expire(ctx, setKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("refresh user sessions: %w", err)
	}
	return userID, nil
}

// Delete удаляет сессию; отсутствие ключа не ошибка
func (s *Store) Delete(ctx context.Context, token string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser отзывает все сессии пользователя
func (s *Store) DeleteAllForUser(ctx context.Context, userID int64) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	setKey := userSessionsKey(userID)
	tokens, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, setKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func sessionKey(token string) string {
	return sessionPrefix + token
}

func userSessionsKey(userID int64) string {
	return userSessionsPrefix + strconv.FormatInt(userID, 10)
}
