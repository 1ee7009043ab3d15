package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/segmentio/ksuid"

	"netowork_backend/internal/config"
)

// Storage defines the interface for object storage operations
type Storage interface {
	// Save stores an object under the given key
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes an object; a missing object is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a public URL for the object
	GetURL(key string) string

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}

// Config holds storage configuration
type Config struct {
	Type      string // local, minio
	BasePath  string // For local storage
	BaseURL   string // Public URL base
	Bucket    string // For minio
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	UseSSL    bool
}

// ConfigFrom переносит секцию storage из конфига приложения
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		UseSSL:    cfg.Storage.UseSSL,
	}
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "minio", "s3":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// NewObjectKey строит ключ вида "<prefix>/<ksuid><ext>"
func NewObjectKey(prefix, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join(prefix, ksuid.New().String()+ext)
}
