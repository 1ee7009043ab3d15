package dto

import "netowork_backend/internal/models"

type RegisterRequest struct {
	Email     string          `json:"email" validate:"required,email,max=255"`
	Password  string          `json:"password" validate:"required,min=8,max=40"`
	FirstName string          `json:"firstName" validate:"required,not-blank,min=2,max=50"`
	LastName  string          `json:"lastName" validate:"required,not-blank,min=2,max=50"`
	Role      models.UserRole `json:"role" validate:"required,user-role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyAccountRequest struct {
	Token string `json:"token" validate:"required,not-blank"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,not-blank"`
	Password string `json:"password" validate:"required,min=8,max=40"`
}

type SetNewEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// RegisterResult - токен, который уходит в cookie registered-email
type RegisterResult struct {
	RegisteredEmailToken string
}

// SessionResult - пользователь и новый токен сессии
type SessionResult struct {
	User         models.PublicUser
	SessionToken string
}
