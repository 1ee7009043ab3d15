package dto

import (
	"netowork_backend/internal/models"
	"netowork_backend/internal/storage"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 200
)

// PageQuery - общие параметры пагинации
type PageQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
	Page  int `form:"page" validate:"omitempty,min=1"`
}

// ToPage подставляет значения по умолчанию
func (q PageQuery) ToPage() models.Page {
	p := models.Page{Limit: q.Limit, Page: q.Page}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

type TaskListQuery struct {
	PageQuery
	Search         string `form:"search" validate:"omitempty,max=255"`
	SubCategoryIDs string `form:"subCategoryIds" validate:"omitempty,id-list"`
	Sort           string `form:"sort" validate:"omitempty,task-sort"`
}

type MyTasksQuery struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,task-status"`
}

type CreateTaskRequest struct {
	Title              string `form:"title" validate:"required,not-blank,min=5,max=50"`
	Description        string `form:"description" validate:"required,not-blank,min=100,max=1000"`
	CategoryID         int64  `form:"categoryId" validate:"required,min=1"`
	SubCategoryID      *int64 `form:"subCategoryId" validate:"omitempty,min=1"`
	Price              int64  `form:"price" validate:"required,min=1"`
	NotifyAboutReplies bool   `form:"notifyAboutReplies"`

	Files []storage.File `form:"-"`
}

type UpdateTaskRequest struct {
	Title              *string `form:"title" validate:"omitempty,not-blank,min=5,max=50"`
	Description        *string `form:"description" validate:"omitempty,not-blank,min=100,max=1000"`
	CategoryID         *int64  `form:"categoryId" validate:"omitempty,min=1"`
	SubCategoryID      *int64  `form:"subCategoryId" validate:"omitempty,min=1"`
	Price              *int64  `form:"price" validate:"omitempty,min=1"`
	NotifyAboutReplies *bool   `form:"notifyAboutReplies"`

	Files []storage.File `form:"-"`
}

func (r *UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.CategoryID == nil &&
		r.SubCategoryID == nil && r.Price == nil && r.NotifyAboutReplies == nil &&
		len(r.Files) == 0
}

type CreateReplyRequest struct {
	Description string `json:"description" validate:"required,not-blank,min=150,max=1000"`
}

type TaskListResponse struct {
	Tasks      []models.TaskListItem `json:"tasks"`
	TotalCount int64                 `json:"totalCount"`
}

type ReplyListResponse struct {
	Replies    []models.TaskReplyItem `json:"replies"`
	TotalCount int64                  `json:"totalCount"`
}

type TaskViewsResponse struct {
	Views int64 `json:"views"`
}
