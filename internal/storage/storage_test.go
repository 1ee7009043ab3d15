package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "http://localhost:4000/uploads/"})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveExistsDelete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tasks/a.txt", strings.NewReader("hello"), 5, "text/plain"))

	ok, err := s.Exists(ctx, "tasks/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:4000/uploads/tasks/a.txt", s.GetURL("tasks/a.txt"))

	require.NoError(t, s.Delete(ctx, "tasks/a.txt"))
	require.NoError(t, s.Delete(ctx, "tasks/a.txt"))

	ok, err = s.Exists(ctx, "tasks/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s := newLocal(t)

	err := s.Save(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}

func TestNewObjectKey(t *testing.T) {
	first := NewObjectKey("works", "Photo.PNG")
	second := NewObjectKey("works", "Photo.PNG")

	assert.True(t, strings.HasPrefix(first, "works/"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.NotEqual(t, first, second)
}

// failingStorage падает на Save для файла с заданным содержимым
type failingStorage struct {
	*LocalStorage
	failOn  string
	mu      sync.Mutex
	deleted []string
}

func (f *failingStorage) Save(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	data, _ := io.ReadAll(r)
	if string(data) == f.failOn {
		return errors.New("boom")
	}
	return f.LocalStorage.Save(ctx, key, bytes.NewReader(data), size, ct)
}

func (f *failingStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return f.LocalStorage.Delete(ctx, key)
}

func TestUploader_UploadAll(t *testing.T) {
	s := newLocal(t)
	u := NewUploader(s, time.Second)

	objects, err := u.UploadAll(context.Background(), "tasks", []File{
		{Name: "a.pdf", ContentType: "application/pdf", Size: 1, Reader: strings.NewReader("a")},
		{Name: "b.txt", ContentType: "text/plain", Size: 1, Reader: strings.NewReader("b")},
	})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a.pdf", objects[0].Name)
	assert.Equal(t, "b.txt", objects[1].Name)

	for _, o := range objects {
		ok, err := s.Exists(context.Background(), o.Key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, s.GetURL(o.Key), o.URL)
	}
}

func TestUploader_UploadAllCleansUpOnFailure(t *testing.T) {
	fs := &failingStorage{LocalStorage: newLocal(t), failOn: "bad"}
	u := NewUploader(fs, time.Second)

	objects, err := u.UploadAll(context.Background(), "tasks", []File{
		{Name: "ok.txt", Size: 2, Reader: strings.NewReader("ok")},
		{Name: "bad.txt", Size: 3, Reader: strings.NewReader("bad")},
	})
	require.Error(t, err)
	assert.Nil(t, objects)

	for _, key := range fs.deleted {
		ok, err := fs.Exists(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
