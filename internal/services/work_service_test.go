package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netowork_backend/internal/config"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

type workFixture struct {
	svc   *workService
	works *mockWorkRepo
	local *storage.LocalStorage
}

func newWorkFixture(t *testing.T) *workFixture {
	t.Helper()
	works := &mockWorkRepo{
		CountByUserFn: func(int64) (int64, error) { return 0, nil },
	}
	uploader, local := newTestUploader(t)
	svc := NewWorkService(works, uploader, imageprocessor.NewProcessor(80, 256)).(*workService)
	svc.runTx = directTx
	return &workFixture{svc: svc, works: works, local: local}
}

func TestWorkService_CreateWorkValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkFixture(t)

	_, err := f.svc.CreateWork(ctx, newTestDB(t), 1, &dto.CreateWorkRequest{Title: "Portfolio"})
	assert.ErrorIs(t, err, apperrors.ErrNoImages)

	images := make([]storage.File, 11)
	for i := range images {
		images[i] = pngFile(t, "img.png")
	}
	_, err = f.svc.CreateWork(ctx, newTestDB(t), 1, &dto.CreateWorkRequest{Title: "Portfolio", Images: images})
	assert.ErrorIs(t, err, apperrors.ErrTooManyImages)

	_, err = f.svc.CreateWork(ctx, newTestDB(t), 1, &dto.CreateWorkRequest{
		Title:  "Portfolio",
		Images: []storage.File{{Name: "doc.pdf", ContentType: "application/pdf", Reader: strings.NewReader("%PDF")}},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
}

func TestWorkService_CreateWorkLimit(t *testing.T) {
	f := newWorkFixture(t)
	f.works.CountByUserFn = func(int64) (int64, error) { return config.MaxWorksPerUser, nil }

	_, err := f.svc.CreateWork(context.Background(), newTestDB(t), 1, &dto.CreateWorkRequest{
		Title:  "Portfolio",
		Images: []storage.File{pngFile(t, "a.png")},
	})
	assert.ErrorIs(t, err, apperrors.ErrWorksLimit)
}

func TestWorkService_CreateWork(t *testing.T) {
	ctx := context.Background()
	f := newWorkFixture(t)

	f.works.CreateFn = func(w *models.Work) error {
		w.ID = 9
		return nil
	}

	work, err := f.svc.CreateWork(ctx, newTestDB(t), 3, &dto.CreateWorkRequest{
		Title:  " Landing ",
		Images: []storage.File{pngFile(t, "a.png"), pngFile(t, "b.png")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9), work.ID)
	assert.Equal(t, "Landing", work.Title)
	assert.Equal(t, int64(3), work.UserID)
	require.Len(t, work.Images, 2)
	for _, img := range work.Images {
		assert.True(t, strings.HasPrefix(img.ImageID, "works/"))
		assert.True(t, strings.HasSuffix(img.ImageID, ".jpg"))
		assert.Equal(t, "http://cdn.test/"+img.ImageID, img.ImageURL)

		exists, err := f.local.Exists(ctx, img.ImageID)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestWorkService_CreateWorkDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	f := newWorkFixture(t)

	var keys []string
	f.works.CreateFn = func(w *models.Work) error {
		for _, img := range w.Images {
			keys = append(keys, img.ImageID)
		}
		return repositories.ErrWorkAlreadyExists
	}

	_, err := f.svc.CreateWork(ctx, newTestDB(t), 3, &dto.CreateWorkRequest{
		Title:  "Landing",
		Images: []storage.File{pngFile(t, "a.png")},
	})
	assert.ErrorIs(t, err, apperrors.ErrWorkAlreadyExists)

	require.Len(t, keys, 1)
	assert.Eventually(t, func() bool {
		ok, _ := f.local.Exists(ctx, keys[0])
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestWorkService_GetWorksNeverNil(t *testing.T) {
	f := newWorkFixture(t)
	f.works.ListByUserFn = func(int64) ([]models.Work, error) { return nil, nil }

	works, err := f.svc.GetWorks(context.Background(), newTestDB(t), 3)
	require.NoError(t, err)
	assert.NotNil(t, works)
	assert.Empty(t, works)
}

func TestWorkService_DeleteWork(t *testing.T) {
	ctx := context.Background()
	f := newWorkFixture(t)

	f.works.FindOwnedFn = func(int64, int64) (*models.Work, error) { return nil, repositories.ErrWorkNotFound }
	err := f.svc.DeleteWork(ctx, newTestDB(t), 3, 9)
	assert.ErrorIs(t, err, apperrors.ErrWorkNotFound)

	obj, err := f.svc.uploader.Upload(ctx, workImagesPrefix, pngFile(t, "a.png"))
	require.NoError(t, err)

	f.works.FindOwnedFn = func(id, userID int64) (*models.Work, error) {
		return &models.Work{BaseModel: models.BaseModel{ID: id}, UserID: userID, Images: []models.WorkImage{{ImageID: obj.Key}}}, nil
	}
	deleted := int64(0)
	f.works.DeleteFn = func(id int64) error {
		deleted = id
		return nil
	}

	require.NoError(t, f.svc.DeleteWork(ctx, newTestDB(t), 3, 9))
	assert.Equal(t, int64(9), deleted)
	assert.Eventually(t, func() bool {
		ok, _ := f.local.Exists(ctx, obj.Key)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
