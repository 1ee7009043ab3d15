package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"netowork_backend/internal/config"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

const workImagesPrefix = "works"

type WorkService interface {
	CreateWork(ctx context.Context, db *gorm.DB, userID int64, req *dto.CreateWorkRequest) (*models.Work, error)
	GetWorks(ctx context.Context, db *gorm.DB, userID int64) ([]models.Work, error)
	DeleteWork(ctx context.Context, db *gorm.DB, userID, workID int64) error
}

type workService struct {
	workRepo repositories.WorkRepository
	uploader *storage.Uploader
	images   *imageprocessor.Processor
	runTx    txRunner
}

func NewWorkService(
	workRepo repositories.WorkRepository,
	uploader *storage.Uploader,
	images *imageprocessor.Processor,
) WorkService {
	return &workService{
		workRepo: workRepo,
		uploader: uploader,
		images:   images,
		runTx:    defaultTxRunner,
	}
}

// CreateWork: изображения приводятся к JPEG, загружаются, затем работа
// вставляется вместе с ними в одной транзакции
func (s *workService) CreateWork(ctx context.Context, db *gorm.DB, userID int64, req *dto.CreateWorkRequest) (*models.Work, error) {
	db = db.WithContext(ctx)

	if len(req.Images) == 0 {
		return nil, apperrors.ErrNoImages
	}
	if err := checkFiles(req.Images, config.WorkImageRules.MaxCount, config.WorkImageRules.Allows, apperrors.ErrTooManyImages); err != nil {
		return nil, err
	}

	count, err := s.workRepo.CountByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if count >= config.MaxWorksPerUser {
		return nil, apperrors.ErrWorksLimit
	}

	processed, err := processImages(ctx, s.images, req.Images)
	if err != nil {
		return nil, err
	}

	objects, err := s.uploader.UploadAll(ctx, workImagesPrefix, processed)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	work := &models.Work{
		Title:  strings.TrimSpace(req.Title),
		UserID: userID,
		Images: make([]models.WorkImage, len(objects)),
	}
	for i, o := range objects {
		work.Images[i] = models.WorkImage{ImageURL: o.URL, ImageID: o.Key}
	}

	err = s.runTx(db, func(tx *gorm.DB) error {
		return s.workRepo.Create(tx, work)
	})
	if err != nil {
		logger.CtxWithError(ctx, "Failed to insert work, removing uploaded images", err, "images", len(objects))
		cleanupObjects(ctx, s.uploader, objectKeys(objects))
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Work created", "work_id", work.ID)
	return work, nil
}

func (s *workService) GetWorks(ctx context.Context, db *gorm.DB, userID int64) ([]models.Work, error) {
	works, err := s.workRepo.ListByUser(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if works == nil {
		works = []models.Work{}
	}
	return works, nil
}

func (s *workService) DeleteWork(ctx context.Context, db *gorm.DB, userID, workID int64) error {
	db = db.WithContext(ctx)

	work, err := s.workRepo.FindOwned(db, workID, userID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.workRepo.Delete(db, work.ID); err != nil {
		return mapRepoError(err)
	}

	keys := make([]string, len(work.Images))
	for i, img := range work.Images {
		keys[i] = img.ImageID
	}
	cleanupObjects(ctx, s.uploader, keys)

	logger.CtxInfo(ctx, "Work deleted", "work_id", work.ID)
	return nil
}
