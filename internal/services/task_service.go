package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"netowork_backend/internal/config"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/storage"
	"netowork_backend/internal/validator"
	"netowork_backend/pkg/apperrors"
)

const taskFilesPrefix = "tasks"

type TaskService interface {
	// Выборки
	GetAllTasks(ctx context.Context, db *gorm.DB, query *dto.TaskListQuery) (*dto.TaskListResponse, error)
	GetMyTasks(ctx context.Context, db *gorm.DB, clientID int64, query *dto.MyTasksQuery) (*dto.TaskListResponse, error)
	GetTasksByMyReplies(ctx context.Context, db *gorm.DB, freelancerID int64, query *dto.PageQuery) (*dto.TaskListResponse, error)
	GetTask(ctx context.Context, db *gorm.DB, user *models.User, taskID int64) (*models.TaskListItem, error)

	// Изменения задач
	CreateTask(ctx context.Context, db *gorm.DB, clientID int64, req *dto.CreateTaskRequest) (*models.TaskListItem, error)
	UpdateTask(ctx context.Context, db *gorm.DB, clientID, taskID int64, req *dto.UpdateTaskRequest) (*models.TaskListItem, error)
	DeleteTask(ctx context.Context, db *gorm.DB, clientID, taskID int64) error
	DeleteTaskFile(ctx context.Context, db *gorm.DB, clientID, taskID int64, fileID string) (*models.TaskListItem, error)

	// Просмотры и отклики
	IncrementView(ctx context.Context, db *gorm.DB, userID, taskID int64) (int64, error)
	CreateReply(ctx context.Context, db *gorm.DB, freelancerID, taskID int64, req *dto.CreateReplyRequest) error
	GetTaskReplies(ctx context.Context, db *gorm.DB, clientID, taskID int64, query *dto.PageQuery) (*dto.ReplyListResponse, error)
}

type taskService struct {
	taskRepo     repositories.TaskRepository
	categoryRepo repositories.CategoryRepository
	userRepo     repositories.UserRepository
	uploader     *storage.Uploader
	notifier     Notifier
	runTx        txRunner
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	categoryRepo repositories.CategoryRepository,
	userRepo repositories.UserRepository,
	uploader *storage.Uploader,
	notifier Notifier,
) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		uploader:     uploader,
		notifier:     notifierOrNoop(notifier),
		runTx:        defaultTxRunner,
	}
}

// ---------------- Выборки ----------------

// GetAllTasks - лента открытых задач для фрилансеров
func (s *taskService) GetAllTasks(ctx context.Context, db *gorm.DB, query *dto.TaskListQuery) (*dto.TaskListResponse, error) {
	filter := repositories.TaskFilter{
		Search: strings.TrimSpace(query.Search),
		Page:   query.ToPage(),
		Status: statusPtr(models.TaskStatusOpen),
	}

	if query.SubCategoryIDs != "" {
		ids, ok := validator.ParseIDList(query.SubCategoryIDs)
		if !ok {
			return nil, apperrors.FieldError("subCategoryIds", "Must be a comma separated list of positive integers")
		}
		filter.SubcategoryIDs = ids
	}
	if query.Sort != "" {
		sort, ok := validator.ParseSortList(query.Sort)
		if !ok {
			return nil, apperrors.FieldError("sort", "Invalid sort value")
		}
		filter.Sort = sort
	}

	return s.list(ctx, db, filter)
}

func (s *taskService) GetMyTasks(ctx context.Context, db *gorm.DB, clientID int64, query *dto.MyTasksQuery) (*dto.TaskListResponse, error) {
	filter := repositories.TaskFilter{
		ClientID: &clientID,
		Page:     query.ToPage(),
	}
	if query.Status != "" {
		filter.Status = statusPtr(models.TaskStatus(query.Status))
	}
	return s.list(ctx, db, filter)
}

func (s *taskService) GetTasksByMyReplies(ctx context.Context, db *gorm.DB, freelancerID int64, query *dto.PageQuery) (*dto.TaskListResponse, error) {
	return s.list(ctx, db, repositories.TaskFilter{
		RepliedBy: &freelancerID,
		Page:      query.ToPage(),
	})
}

// GetTask: заказчик видит свою задачу в любом статусе, остальные - только открытые
func (s *taskService) GetTask(ctx context.Context, db *gorm.DB, user *models.User, taskID int64) (*models.TaskListItem, error) {
	filter := repositories.TaskFilter{TaskID: &taskID}
	if user.Role == models.UserRoleClient {
		filter.ClientID = &user.ID
	} else {
		filter.Status = statusPtr(models.TaskStatusOpen)
	}

	items, _, err := s.taskRepo.List(db.WithContext(ctx), filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(items) == 0 {
		return nil, apperrors.ErrTaskNotFound
	}
	return &items[0], nil
}

func (s *taskService) list(ctx context.Context, db *gorm.DB, filter repositories.TaskFilter) (*dto.TaskListResponse, error) {
	items, total, err := s.taskRepo.List(db.WithContext(ctx), filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if items == nil {
		items = []models.TaskListItem{}
	}
	return &dto.TaskListResponse{Tasks: items, TotalCount: total}, nil
}

// ---------------- Изменения задач ----------------

// CreateTask загружает файлы вне транзакции, затем вставляет задачу с файлами.
// При ошибке вставки загруженные объекты удаляются.
func (s *taskService) CreateTask(ctx context.Context, db *gorm.DB, clientID int64, req *dto.CreateTaskRequest) (*models.TaskListItem, error) {
	db = db.WithContext(ctx)

	if err := checkFiles(req.Files, config.TaskFileRules.MaxCount, config.TaskFileRules.Allows, apperrors.ErrTooManyTaskFiles); err != nil {
		return nil, err
	}
	if err := s.checkCategoryPair(db, req.CategoryID, req.SubCategoryID); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Creating task", "files", len(req.Files))

	objects, err := s.uploader.UploadAll(ctx, taskFilesPrefix, req.Files)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	task := &models.Task{
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		CategoryID:         req.CategoryID,
		SubcategoryID:      req.SubCategoryID,
		ClientID:           clientID,
		Price:              req.Price,
		Status:             models.TaskStatusOpen,
		NotifyAboutReplies: req.NotifyAboutReplies,
		Files:              taskFiles(0, objects),
	}

	err = s.runTx(db, func(tx *gorm.DB) error {
		return s.taskRepo.Create(tx, task)
	})
	if err != nil {
		logger.CtxWithError(ctx, "Failed to insert task, removing uploaded files", err, "files", len(objects))
		cleanupObjects(ctx, s.uploader, objectKeys(objects))
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Task created", "task_id", task.ID)
	return s.findItem(db, task.ID)
}

// UpdateTask - частичное обновление своей задачи
func (s *taskService) UpdateTask(ctx context.Context, db *gorm.DB, clientID, taskID int64, req *dto.UpdateTaskRequest) (*models.TaskListItem, error) {
	db = db.WithContext(ctx)

	if req.IsEmpty() {
		return nil, apperrors.ErrEmptyTaskUpdate
	}

	task, err := s.taskRepo.FindOwned(db, taskID, clientID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.NotifyAboutReplies != nil {
		fields["notify_about_replies"] = *req.NotifyAboutReplies
	}

	// пара категорий проверяется, только если она меняется
	if req.CategoryID != nil || req.SubCategoryID != nil {
		categoryID := task.CategoryID
		if req.CategoryID != nil {
			categoryID = *req.CategoryID
		}
		subcategoryID := task.SubcategoryID
		if req.SubCategoryID != nil {
			subcategoryID = req.SubCategoryID
		}
		if categoryID != task.CategoryID || !sameID(subcategoryID, task.SubcategoryID) {
			if err := s.checkCategoryPair(db, categoryID, subcategoryID); err != nil {
				return nil, err
			}
			fields["category_id"] = categoryID
			fields["subcategory_id"] = subcategoryID
		}
	}

	maxNew := config.TaskFileRules.MaxCount - len(task.Files)
	if err := checkFiles(req.Files, maxNew, config.TaskFileRules.Allows, apperrors.ErrTooManyTaskFiles); err != nil {
		return nil, err
	}

	objects, err := s.uploader.UploadAll(ctx, taskFilesPrefix, req.Files)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	err = s.runTx(db, func(tx *gorm.DB) error {
		if err := s.taskRepo.Update(tx, task.ID, fields); err != nil {
			return err
		}
		return s.taskRepo.AddFiles(tx, taskFiles(task.ID, objects))
	})
	if err != nil {
		if len(objects) > 0 {
			logger.CtxWithError(ctx, "Failed to update task, removing uploaded files", err, "task_id", task.ID)
			cleanupObjects(ctx, s.uploader, objectKeys(objects))
		}
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Task updated", "task_id", task.ID, "new_files", len(objects))
	return s.findItem(db, task.ID)
}

// DeleteTask удаляет открытую задачу; объекты хранилища удаляются в фоне
func (s *taskService) DeleteTask(ctx context.Context, db *gorm.DB, clientID, taskID int64) error {
	db = db.WithContext(ctx)

	task, err := s.taskRepo.FindOwned(db, taskID, clientID)
	if err != nil {
		return mapRepoError(err)
	}
	if task.Status != models.TaskStatusOpen {
		return apperrors.ErrTaskNotOpen
	}

	if err := s.taskRepo.Delete(db, task.ID); err != nil {
		return mapRepoError(err)
	}

	keys := make([]string, len(task.Files))
	for i, f := range task.Files {
		keys[i] = f.FileID
	}
	cleanupObjects(ctx, s.uploader, keys)

	logger.CtxInfo(ctx, "Task deleted", "task_id", task.ID)
	return nil
}

// DeleteTaskFile удаляет объект, затем строку, и возвращает задачу с оставшимися файлами
func (s *taskService) DeleteTaskFile(ctx context.Context, db *gorm.DB, clientID, taskID int64, fileID string) (*models.TaskListItem, error) {
	db = db.WithContext(ctx)

	task, err := s.taskRepo.FindOwned(db, taskID, clientID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	found := false
	for _, f := range task.Files {
		if f.FileID == fileID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.ErrTaskFileNotFound
	}

	if err := s.uploader.Delete(ctx, fileID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.taskRepo.DeleteFile(db, task.ID, fileID); err != nil {
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Task file deleted", "task_id", task.ID, "file_id", fileID)
	return s.findItem(db, task.ID)
}

// ---------------- Просмотры и отклики ----------------

// IncrementView учитывает просмотр один раз на пользователя
func (s *taskService) IncrementView(ctx context.Context, db *gorm.DB, userID, taskID int64) (int64, error) {
	db = db.WithContext(ctx)

	if _, err := s.taskRepo.FindByID(db, taskID); err != nil {
		return 0, mapRepoError(err)
	}

	views, err := s.taskRepo.AddView(db, taskID, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return views, nil
}

// CreateReply: задача должна быть открыта. Повторный отклик отсекает
// уникальный индекс (freelancer_id, task_id).
func (s *taskService) CreateReply(ctx context.Context, db *gorm.DB, freelancerID, taskID int64, req *dto.CreateReplyRequest) error {
	db = db.WithContext(ctx)

	var (
		task       *models.Task
		freelancer *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		task, err = s.taskRepo.FindByID(db.WithContext(gctx), taskID)
		return err
	})
	g.Go(func() error {
		var err error
		freelancer, err = s.userRepo.FindByID(db.WithContext(gctx), freelancerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return mapRepoError(err)
	}

	if task.Status != models.TaskStatusOpen {
		return apperrors.ErrTaskNotOpen
	}

	reply := &models.TaskReply{
		Description:  strings.TrimSpace(req.Description),
		FreelancerID: freelancerID,
		TaskID:       taskID,
	}
	if err := s.taskRepo.CreateReply(db, reply); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Task reply created", "task_id", taskID, "reply_id", reply.ID)

	if task.NotifyAboutReplies {
		s.notifier.Notify(task.ClientID, EventTaskReply, map[string]any{
			"taskId":     task.ID,
			"taskTitle":  task.Title,
			"replyId":    reply.ID,
			"freelancer": freelancer.FullName(),
		})
	}
	return nil
}

// GetTaskReplies - отклики на собственную задачу заказчика
func (s *taskService) GetTaskReplies(ctx context.Context, db *gorm.DB, clientID, taskID int64, query *dto.PageQuery) (*dto.ReplyListResponse, error) {
	db = db.WithContext(ctx)

	if _, err := s.taskRepo.FindOwned(db, taskID, clientID); err != nil {
		return nil, mapRepoError(err)
	}

	replies, total, err := s.taskRepo.ListReplies(db, taskID, query.ToPage())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if replies == nil {
		replies = []models.TaskReplyItem{}
	}
	return &dto.ReplyListResponse{Replies: replies, TotalCount: total}, nil
}

// ---------------- helpers ----------------

func (s *taskService) checkCategoryPair(db *gorm.DB, categoryID int64, subcategoryID *int64) error {
	ok, err := s.categoryRepo.PairExists(db, categoryID, subcategoryID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		return apperrors.ErrCategoryMismatch
	}
	return nil
}

func (s *taskService) findItem(db *gorm.DB, id int64) (*models.TaskListItem, error) {
	item, err := s.taskRepo.FindListItem(db, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return item, nil
}

func taskFiles(taskID int64, objects []storage.Object) []models.TaskFile {
	files := make([]models.TaskFile, len(objects))
	for i, o := range objects {
		files[i] = models.TaskFile{
			TaskID:   taskID,
			FileID:   o.Key,
			FileURL:  o.URL,
			FileName: o.Name,
		}
	}
	return files
}

func statusPtr(s models.TaskStatus) *models.TaskStatus {
	return &s
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
