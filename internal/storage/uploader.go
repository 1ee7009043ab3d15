package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"netowork_backend/internal/logger"
)

// File - входящий файл для загрузки
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Object - загруженный объект
type Object struct {
	Key  string
	URL  string
	Name string
}

// Uploader загружает и удаляет пачки объектов параллельно, с таймаутом на каждый вызов
type Uploader struct {
	store   Storage
	timeout time.Duration
}

func NewUploader(store Storage, timeout time.Duration) *Uploader {
	return &Uploader{store: store, timeout: timeout}
}

func (u *Uploader) Storage() Storage {
	return u.store
}

// UploadAll загружает все файлы под префикс. При ошибке уже загруженные
// объекты удаляются, результат nil.
func (u *Uploader) UploadAll(ctx context.Context, prefix string, files []File) ([]Object, error) {
	objects := make([]Object, len(files))
	var mu sync.Mutex
	var uploaded []string

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			key := NewObjectKey(prefix, f.Name)

			opCtx, cancel := u.withTimeout(gctx)
			defer cancel()

			if err := u.store.Save(opCtx, key, f.Reader, f.Size, f.ContentType); err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}

			mu.Lock()
			uploaded = append(uploaded, key)
			mu.Unlock()

			objects[i] = Object{Key: key, URL: u.store.GetURL(key), Name: f.Name}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.DeleteAll(context.WithoutCancel(ctx), uploaded)
		return nil, err
	}
	return objects, nil
}

// Upload загружает один файл
func (u *Uploader) Upload(ctx context.Context, prefix string, f File) (Object, error) {
	objects, err := u.UploadAll(ctx, prefix, []File{f})
	if err != nil {
		return Object{}, err
	}
	return objects[0], nil
}

// DeleteAll удаляет объекты best-effort: ошибки только логируются
func (u *Uploader) DeleteAll(ctx context.Context, keys []string) {
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()

			opCtx, cancel := u.withTimeout(ctx)
			defer cancel()

			if err := u.store.Delete(opCtx, key); err != nil {
				logger.CtxWithError(ctx, "Failed to delete stored object", err, "key", key)
			}
		}()
	}
	wg.Wait()
}

// Delete удаляет один объект, возвращая ошибку вызывающему
func (u *Uploader) Delete(ctx context.Context, key string) error {
	opCtx, cancel := u.withTimeout(ctx)
	defer cancel()
	return u.store.Delete(opCtx, key)
}

func (u *Uploader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.timeout)
}
