package dto

import "netowork_backend/internal/storage"

type CreateWorkRequest struct {
	Title string `form:"title" validate:"required,not-blank,min=5,max=50"`

	Images []storage.File `form:"-"`
}
