package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"netowork_backend/internal/auth"
	"netowork_backend/internal/email"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/session"
	"netowork_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResult, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.SessionResult, error)
	VerifyAccount(ctx context.Context, db *gorm.DB, req *dto.VerifyAccountRequest) (*dto.SessionResult, error)
	Authenticate(ctx context.Context, db *gorm.DB, sessionToken string) (*models.User, error)
	Logout(ctx context.Context, sessionToken string) error
	SendVerificationEmail(ctx context.Context, db *gorm.DB, registeredToken string) error
	SetNewEmail(ctx context.Context, db *gorm.DB, registeredToken string, req *dto.SetNewEmailRequest) error
	ForgotPassword(ctx context.Context, db *gorm.DB, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
}

// TokenStores - отдельные пространства ключей для каждого вида токенов
type TokenStores struct {
	Verification    *session.TokenStore
	ResetPassword   *session.TokenStore
	NewEmail        *session.TokenStore
	RegisteredEmail *session.TokenStore
}

type authService struct {
	userRepo repositories.UserRepository
	sessions *session.Store
	tokens   TokenStores
	sender   email.Sender
	runTx    txRunner
}

func NewAuthService(
	userRepo repositories.UserRepository,
	sessions *session.Store,
	tokens TokenStores,
	sender email.Sender,
) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
		sender:   sender,
		runTx:    defaultTxRunner,
	}
}

// Register создает неподтвержденного пользователя и отправляет письмо.
// Если письмо не ушло, пользователь остается, ошибка возвращается как 500.
func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResult, error) {
	db = db.WithContext(ctx)
	emailAddr := normalizeEmail(req.Email)

	logger.CtxInfo(ctx, "Registering user", "email", emailAddr)

	exists, err := s.userRepo.ExistsByEmail(db, emailAddr)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		logger.CtxWarn(ctx, "User with email already exists", "email", emailAddr)
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
	}
	// уникальный индекс - настоящая защита от гонки двух регистраций
	if err := s.userRepo.Create(db, user); err != nil {
		return nil, mapRepoError(err)
	}

	registeredToken, err := s.tokens.RegisteredEmail.Issue(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// результат возвращается и при ошибке письма: cookie нужна для повторной отправки
	result := &dto.RegisterResult{RegisteredEmailToken: registeredToken}
	if err := s.issueVerification(ctx, user); err != nil {
		return result, err
	}

	return result, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.SessionResult, error) {
	db = db.WithContext(ctx)
	emailAddr := normalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxWarn(ctx, "Login attempt for unknown email", "email", emailAddr)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	ok, err := auth.CheckPasswordHash(req.Password, user.Password)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to check password hash", err, "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !ok {
		logger.CtxWarn(ctx, "Login attempt with wrong password", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, apperrors.ErrUserBanned
	}
	if !user.IsVerified {
		return nil, apperrors.ErrUserNotVerified
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User logged in", "user_id", user.ID)
	return &dto.SessionResult{User: user.Public(), SessionToken: token}, nil
}

// VerifyAccount подтверждает аккаунт по токену из письма.
// Принимает токены и регистрации, и смены email. Транзакция фиксируется
// только после записи сессии.
func (s *authService) VerifyAccount(ctx context.Context, db *gorm.DB, req *dto.VerifyAccountRequest) (*dto.SessionResult, error) {
	db = db.WithContext(ctx)

	store := s.tokens.Verification
	emailAddr, err := store.Get(ctx, req.Token)
	if apperrors.Is(err, session.ErrNotFound) {
		store = s.tokens.NewEmail
		emailAddr, err = store.Get(ctx, req.Token)
	}
	if err != nil {
		if apperrors.Is(err, session.ErrNotFound) {
			logger.CtxWarn(ctx, "Verification token not found")
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	var result *dto.SessionResult
	err = s.runTx(db, func(tx *gorm.DB) error {
		// параллельное подтверждение тем же токеном ждет здесь и видит is_verified
		user, err := s.userRepo.FindByEmailForUpdate(tx, emailAddr)
		if err != nil {
			return mapRepoError(err)
		}
		if user.IsVerified {
			return apperrors.ErrUserAlreadyVerified
		}
		if err := s.userRepo.MarkVerified(tx, user.ID); err != nil {
			return mapRepoError(err)
		}
		user.IsVerified = true

		token, err := s.sessions.Create(ctx, user.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}

		result = &dto.SessionResult{User: user.Public(), SessionToken: token}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := store.Delete(ctx, req.Token); err != nil {
		logger.CtxWithError(ctx, "Failed to delete verification token", err)
	}

	logger.CtxInfo(ctx, "Account verified", "user_id", result.User.ID)
	return result, nil
}

// Authenticate проверяет сессию и продлевает ее. Мертвая сессия удаляется.
func (s *authService) Authenticate(ctx context.Context, db *gorm.DB, sessionToken string) (*models.User, error) {
	userID, err := s.sessions.Lookup(ctx, sessionToken)
	if err != nil {
		if apperrors.Is(err, session.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db.WithContext(ctx), userID)
	if err != nil && !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if user == nil || !user.IsVerified || user.IsBanned {
		if delErr := s.sessions.Delete(ctx, sessionToken); delErr != nil {
			logger.CtxWithError(ctx, "Failed to delete dead session", delErr, "user_id", userID)
		}
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionToken); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "User logged out")
	return nil
}

// SendVerificationEmail повторно отправляет письмо по cookie registered-email
func (s *authService) SendVerificationEmail(ctx context.Context, db *gorm.DB, registeredToken string) error {
	user, err := s.registeredUser(ctx, db.WithContext(ctx), registeredToken)
	if err != nil {
		return err
	}
	return s.issueVerification(ctx, user)
}

// SetNewEmail меняет email неподтвержденного пользователя (опечатка при регистрации)
func (s *authService) SetNewEmail(ctx context.Context, db *gorm.DB, registeredToken string, req *dto.SetNewEmailRequest) error {
	db = db.WithContext(ctx)

	user, err := s.registeredUser(ctx, db, registeredToken)
	if err != nil {
		return err
	}

	newEmail := normalizeEmail(req.Email)
	if newEmail == user.Email {
		return s.issueVerification(ctx, user)
	}

	exists, err := s.userRepo.ExistsByEmail(db, newEmail)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if exists {
		return apperrors.ErrEmailAlreadyExists
	}

	if err := s.userRepo.UpdateEmail(db, user.ID, newEmail); err != nil {
		return mapRepoError(err)
	}
	user.Email = newEmail

	if err := s.tokens.RegisteredEmail.Replace(ctx, registeredToken, newEmail); err != nil {
		logger.CtxWithError(ctx, "Failed to update registered email token", err, "user_id", user.ID)
	}

	logger.CtxInfo(ctx, "Registered email changed", "user_id", user.ID)
	return s.issueVerification(ctx, user)
}

// ForgotPassword всегда отвечает одинаково, чтобы не раскрывать наличие email
func (s *authService) ForgotPassword(ctx context.Context, db *gorm.DB, req *dto.ForgotPasswordRequest) error {
	emailAddr := normalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(db.WithContext(ctx), emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxWarn(ctx, "Password reset requested for unknown email")
			return nil
		}
		return apperrors.InternalError(err)
	}
	if user.IsBanned {
		logger.CtxWarn(ctx, "Password reset requested for banned user", "user_id", user.ID)
		return nil
	}

	token, err := s.tokens.ResetPassword.Issue(ctx, user.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.sender.SendPasswordReset(ctx, user.Email, user.FullName(), token); err != nil {
		logger.CtxWithError(ctx, "Failed to send password reset email", err, "user_id", user.ID)
		return apperrors.InternalError(err)
	}
	return nil
}

// ResetPassword меняет пароль и отзывает все сессии пользователя
func (s *authService) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	db = db.WithContext(ctx)

	emailAddr, err := s.tokens.ResetPassword.Consume(ctx, req.Token)
	if err != nil {
		if apperrors.Is(err, session.ErrNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		return mapRepoError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePassword(db, user.ID, hash); err != nil {
		return mapRepoError(err)
	}

	if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		logger.CtxWithError(ctx, "Failed to revoke sessions after password reset", err, "user_id", user.ID)
	}

	logger.CtxInfo(ctx, "Password reset", "user_id", user.ID)
	return nil
}

// registeredUser - неподтвержденный пользователь по токену registered-email
func (s *authService) registeredUser(ctx context.Context, db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrInvalidToken
	}

	emailAddr, err := s.tokens.RegisteredEmail.Get(ctx, token)
	if err != nil {
		if apperrors.Is(err, session.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			_ = s.tokens.RegisteredEmail.Delete(ctx, token)
		}
		return nil, mapRepoError(err)
	}
	if user.IsVerified {
		_ = s.tokens.RegisteredEmail.Delete(ctx, token)
		return nil, apperrors.ErrUserAlreadyVerified
	}
	return user, nil
}

func (s *authService) issueVerification(ctx context.Context, user *models.User) error {
	token, err := s.tokens.Verification.Issue(ctx, user.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.sender.SendVerification(ctx, user.Email, user.FullName(), token); err != nil {
		logger.CtxWithError(ctx, "Failed to send verification email", err, "user_id", user.ID)
		return apperrors.InternalError(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
