package email

import "context"

// Email представляет структуру email сообщения
type Email struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender отправляет письма пользователям
type Sender interface {
	// SendVerification отправляет ссылку подтверждения аккаунта
	SendVerification(ctx context.Context, to, name, token string) error

	// SendPasswordReset отправляет ссылку сброса пароля
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

// LinkData - данные шаблона письма со ссылкой
type LinkData struct {
	Name       string
	ActionURL  string
	ActionText string
}
