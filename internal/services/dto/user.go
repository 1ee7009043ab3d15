package dto

import (
	"netowork_backend/internal/models"
	"netowork_backend/internal/storage"
)

// UpdateProfileRequest - multipart форма профиля, все поля необязательны
type UpdateProfileRequest struct {
	Email     *string `form:"email" validate:"omitempty,email,max=255"`
	FirstName *string `form:"firstName" validate:"omitempty,not-blank,min=2,max=50"`
	LastName  *string `form:"lastName" validate:"omitempty,not-blank,min=2,max=50"`
	AboutMe   *string `form:"aboutMe" validate:"omitempty,max=1000"`

	Avatar *storage.File `form:"-"`
}

func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Email == nil && r.FirstName == nil && r.LastName == nil && r.AboutMe == nil && r.Avatar == nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=40"`
}

// UpdateProfileResult - EmailChanged означает, что сессия отозвана
type UpdateProfileResult struct {
	User         models.PublicUser
	EmailChanged bool
}
