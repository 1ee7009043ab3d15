package apperrors

import (
	"net/http"
)

/*
Предопределенные ошибки бизнес-логики.
Сервисы возвращают их напрямую или через WithError.
*/

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusBadRequest,
)

var ErrUserNotVerified = New(
	CodeNotVerified,
	"auth",
	"User is not verified",
	http.StatusBadRequest,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"User is banned",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User with this email already exists",
	http.StatusConflict,
)

var ErrUserAlreadyVerified = New(
	CodeConflict,
	"auth",
	"User is already verified",
	http.StatusConflict,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusNotFound,
)

var ErrUnauthorized = NewUnauthorizedError("Unauthorized")

var ErrForbidden = New(
	CodeForbidden,
	"auth",
	"You don't have permission to access this resource",
	http.StatusForbidden,
)

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrWrongOldPassword = New(
	CodeBadRequest,
	"user",
	"Old password is incorrect",
	http.StatusBadRequest,
)

// --- Tasks ---

var ErrTaskNotFound = New(
	CodeNotFound,
	"task",
	"Task not found",
	http.StatusNotFound,
)

var ErrCategoryMismatch = New(
	CodeBadRequest,
	"task",
	"Category or subcategory not found",
	http.StatusBadRequest,
)

var ErrTaskNotOpen = New(
	CodeInvalidStatus,
	"task",
	"Task is not open",
	http.StatusBadRequest,
)

var ErrEmptyTaskUpdate = New(
	CodeBadRequest,
	"task",
	"Nothing to update",
	http.StatusBadRequest,
)

var ErrTooManyTaskFiles = New(
	CodeLimitExceeded,
	"task",
	"Too many files attached to the task",
	http.StatusBadRequest,
)

var ErrTaskFileNotFound = New(
	CodeNotFound,
	"task",
	"File not found",
	http.StatusNotFound,
)

var ErrReplyAlreadyExists = New(
	CodeAlreadyExists,
	"task",
	"You have already replied to this task",
	http.StatusBadRequest,
)

// --- Files ---

var ErrInvalidFileType = New(
	CodeBadRequest,
	"file",
	"The provided file type is not allowed",
	http.StatusBadRequest,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"file",
	"File size exceeds the allowed limit",
	http.StatusBadRequest,
)

// --- Chat ---

var ErrChatNotFound = New(
	CodeNotFound,
	"chat",
	"Chat not found",
	http.StatusNotFound,
)

var ErrRecipientNotFound = New(
	CodeNotFound,
	"chat",
	"Recipient not found",
	http.StatusNotFound,
)

var ErrChatWithSelf = New(
	CodeBadRequest,
	"chat",
	"You cannot start a chat with yourself",
	http.StatusBadRequest,
)

var ErrNotChatParticipant = New(
	CodeForbidden,
	"chat",
	"You are not a participant of this chat",
	http.StatusForbidden,
)

// --- Works ---

var ErrWorkAlreadyExists = New(
	CodeAlreadyExists,
	"work",
	"Work already exists",
	http.StatusBadRequest,
)

var ErrWorkNotFound = New(
	CodeNotFound,
	"work",
	"Work not found",
	http.StatusNotFound,
)

var ErrWorksLimit = New(
	CodeLimitExceeded,
	"work",
	"Maximum number of works reached",
	http.StatusBadRequest,
)

var ErrNoImages = New(
	CodeBadRequest,
	"work",
	"No files uploaded",
	http.StatusBadRequest,
)

var ErrTooManyImages = New(
	CodeLimitExceeded,
	"work",
	"Too many images",
	http.StatusBadRequest,
)
