package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

// txRunner выполняет fn в транзакции; в тестах подменяется на прямой вызов
type txRunner func(db *gorm.DB, fn func(tx *gorm.DB) error) error

var defaultTxRunner txRunner = repositories.RunInTx

// mapRepoError переводит sentinel-ошибки репозиториев в ошибки API.
// Все, что не найдено в таблице, становится 500.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	switch {
	case apperrors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case apperrors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case apperrors.Is(err, repositories.ErrTaskNotFound):
		return apperrors.ErrTaskNotFound
	case apperrors.Is(err, repositories.ErrTaskFileNotFound):
		return apperrors.ErrTaskFileNotFound
	case apperrors.Is(err, repositories.ErrReplyAlreadyExists):
		return apperrors.ErrReplyAlreadyExists
	case apperrors.Is(err, repositories.ErrChatNotFound):
		return apperrors.ErrChatNotFound
	case apperrors.Is(err, repositories.ErrWorkNotFound):
		return apperrors.ErrWorkNotFound
	case apperrors.Is(err, repositories.ErrWorkAlreadyExists):
		return apperrors.ErrWorkAlreadyExists
	}
	return apperrors.InternalError(err)
}

// checkFiles проверяет количество и MIME-типы вложений
func checkFiles(files []storage.File, maxCount int, allowed func(string) bool, tooMany error) error {
	if len(files) > maxCount {
		return tooMany
	}
	for _, f := range files {
		if !allowed(f.ContentType) {
			return apperrors.ErrInvalidFileType.WithDetails(map[string]string{"file": f.Name})
		}
	}
	return nil
}

// cleanupObjects удаляет объекты в фоне, без привязки к отмене запроса
func cleanupObjects(ctx context.Context, uploader *storage.Uploader, keys []string) {
	if len(keys) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		uploader.DeleteAll(bg, keys)
		logger.CtxDebug(bg, "Stored objects cleanup finished", "count", len(keys))
	}()
}

func objectKeys(objects []storage.Object) []string {
	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.Key
	}
	return keys
}

// processImages перекодирует изображения в JPEG. Нераспознанный файл - 400.
func processImages(ctx context.Context, proc *imageprocessor.Processor, files []storage.File) ([]storage.File, error) {
	out := make([]storage.File, len(files))
	for i, f := range files {
		res, err := proc.Process(f.Reader)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to process image", "file", f.Name, "error", err.Error())
			return nil, apperrors.ErrInvalidFileType.WithError(err)
		}
		out[i] = storage.File{
			Name:        strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".jpg",
			ContentType: res.ContentType,
			Size:        int64(len(res.Data)),
			Reader:      bytes.NewReader(res.Data),
		}
	}
	return out, nil
}
