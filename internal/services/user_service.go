package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/config"
	"netowork_backend/internal/email"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/session"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

const avatarPrefix = "avatars"

var ErrNothingToUpdate = apperrors.NewBadRequestError("No fields to update")

type UserService interface {
	UpdateProfile(ctx context.Context, db *gorm.DB, user *models.User, sessionToken string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error)
	ChangePassword(ctx context.Context, db *gorm.DB, user *models.User, req *dto.ChangePasswordRequest) error
	SeedAdmin(ctx context.Context, db *gorm.DB, emailAddr, password string) error
}

type userService struct {
	userRepo  repositories.UserRepository
	sessions  *session.Store
	newEmails *session.TokenStore
	sender    email.Sender
	uploader  *storage.Uploader
	images    *imageprocessor.Processor
}

func NewUserService(
	userRepo repositories.UserRepository,
	sessions *session.Store,
	newEmails *session.TokenStore,
	sender email.Sender,
	uploader *storage.Uploader,
	images *imageprocessor.Processor,
) UserService {
	return &userService{
		userRepo:  userRepo,
		sessions:  sessions,
		newEmails: newEmails,
		sender:    sender,
		uploader:  uploader,
		images:    images,
	}
}

// UpdateProfile частично обновляет профиль. Смена email снимает подтверждение,
// отзывает текущую сессию и отправляет письмо на новый адрес.
func (s *userService) UpdateProfile(ctx context.Context, db *gorm.DB, user *models.User, sessionToken string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error) {
	db = db.WithContext(ctx)

	if req.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.AboutMe != nil {
		fields["about_me"] = *req.AboutMe
	}

	emailChanged := false
	if req.Email != nil {
		newEmail := normalizeEmail(*req.Email)
		if newEmail != user.Email {
			exists, err := s.userRepo.ExistsByEmail(db, newEmail)
			if err != nil {
				return nil, apperrors.InternalError(err)
			}
			if exists {
				return nil, apperrors.ErrEmailAlreadyExists
			}
			fields["email"] = newEmail
			fields["is_verified"] = false
			emailChanged = true
		}
	}

	var avatar *storage.Object
	if req.Avatar != nil {
		if !config.AvatarRules.Allows(req.Avatar.ContentType) {
			return nil, apperrors.ErrInvalidFileType
		}
		processed, err := processImages(ctx, s.images, []storage.File{*req.Avatar})
		if err != nil {
			return nil, err
		}
		obj, err := s.uploader.Upload(ctx, avatarPrefix, processed[0])
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		avatar = &obj
		fields["avatar"] = obj.URL
		fields["avatar_id"] = obj.Key
	}

	if len(fields) == 0 {
		// прислали только тот же email
		return &dto.UpdateProfileResult{User: user.Public()}, nil
	}

	updated, err := s.userRepo.UpdateProfile(db, user.ID, fields)
	if err != nil {
		if avatar != nil {
			logger.CtxWithError(ctx, "Profile update failed, removing uploaded avatar", err, "key", avatar.Key)
			cleanupObjects(ctx, s.uploader, []string{avatar.Key})
		}
		return nil, mapRepoError(err)
	}

	if avatar != nil && user.AvatarID != nil && *user.AvatarID != "" {
		cleanupObjects(ctx, s.uploader, []string{*user.AvatarID})
	}

	if emailChanged {
		if err := s.sessions.Delete(ctx, sessionToken); err != nil {
			logger.CtxWithError(ctx, "Failed to revoke session after email change", err)
		}
		if err := s.sendNewEmailConfirmation(ctx, updated); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "User email changed", "user_id", user.ID)
	}

	return &dto.UpdateProfileResult{User: updated.Public(), EmailChanged: emailChanged}, nil
}

func (s *userService) ChangePassword(ctx context.Context, db *gorm.DB, user *models.User, req *dto.ChangePasswordRequest) error {
	db = db.WithContext(ctx)

	ok, err := auth.CheckPasswordHash(req.OldPassword, user.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		return apperrors.ErrWrongOldPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePassword(db, user.ID, hash); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Password changed", "user_id", user.ID)
	return nil
}

// SeedAdmin создает первого администратора, если его почта еще не занята
func (s *userService) SeedAdmin(ctx context.Context, db *gorm.DB, emailAddr, password string) error {
	db = db.WithContext(ctx)
	emailAddr = normalizeEmail(emailAddr)

	exists, err := s.userRepo.ExistsByEmail(db, emailAddr)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:      emailAddr,
		Password:   hash,
		FirstName:  "Admin",
		LastName:   "Admin",
		Role:       models.UserRoleAdmin,
		IsVerified: true,
	}
	if err := s.userRepo.Create(db, admin); err != nil && !apperrors.Is(err, repositories.ErrUserAlreadyExists) {
		return err
	}

	logger.CtxInfo(ctx, "First admin created", "email", emailAddr)
	return nil
}

func (s *userService) sendNewEmailConfirmation(ctx context.Context, user *models.User) error {
	token, err := s.newEmails.Issue(ctx, user.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.sender.SendVerification(ctx, user.Email, user.FullName(), token); err != nil {
		logger.CtxWithError(ctx, "Failed to send new email confirmation", err, "user_id", user.ID)
		return apperrors.InternalError(err)
	}
	return nil
}
