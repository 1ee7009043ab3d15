package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"netowork_backend/internal/config"
	"netowork_backend/internal/logger"
)

// Links строит ссылки на клиентские страницы с токеном
type Links struct {
	ClientURL        string
	VerificationPath string
	ResetPath        string
}

func LinksFrom(cfg *config.Config) Links {
	return Links{
		ClientURL:        strings.TrimRight(cfg.Server.ClientURL, "/"),
		VerificationPath: cfg.Auth.AccountVerificationPath,
		ResetPath:        cfg.Auth.ResetPasswordPath,
	}
}

func (l Links) Verification(token string) string {
	return l.ClientURL + l.VerificationPath + "?token=" + url.QueryEscape(token)
}

func (l Links) PasswordReset(token string) string {
	return l.ClientURL + l.ResetPath + "?token=" + url.QueryEscape(token)
}

// SMTPSender отправляет письма через gomail
type SMTPSender struct {
	dialer    *gomail.Dialer
	from      string
	fromName  string
	timeout   time.Duration
	links     Links
	templates *TemplateManager
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	if cfg.Email.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.Email.SMTPPort <= 0 || cfg.Email.SMTPPort > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.Email.SMTPPort)
	}

	tm, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}

	d := gomail.NewDialer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername,
		cfg.Email.SMTPPassword,
	)
	d.SSL = cfg.Email.UseTLS
	if cfg.Email.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Email.SMTPHost}
	}

	return &SMTPSender{
		dialer:    d,
		from:      cfg.Email.FromEmail,
		fromName:  cfg.Email.FromName,
		timeout:   time.Duration(cfg.Email.TimeoutSec) * time.Second,
		links:     LinksFrom(cfg),
		templates: tm,
	}, nil
}

func (s *SMTPSender) SendVerification(ctx context.Context, to, name, token string) error {
	return s.sendLink(ctx, to, "Подтверждение аккаунта", templateVerification, LinkData{
		Name:       name,
		ActionURL:  s.links.Verification(token),
		ActionText: "Подтвердить аккаунт",
	})
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, name, token string) error {
	return s.sendLink(ctx, to, "Восстановление пароля", templatePasswordReset, LinkData{
		Name:       name,
		ActionURL:  s.links.PasswordReset(token),
		ActionText: "Сбросить пароль",
	})
}

func (s *SMTPSender) sendLink(ctx context.Context, to, subject, tpl string, data LinkData) error {
	html, err := s.templates.Render(tpl, data)
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:       to,
		Subject:  subject,
		Body:     data.ActionText + ": " + data.ActionURL,
		HTMLBody: html,
	})
}

// Send отправляет письмо. gomail не принимает context, поэтому отправка
// идет в горутине, а ожидание ограничено таймаутом.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)
	if email.HTMLBody != "" {
		m.AddAlternative("text/html", email.HTMLBody)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", email.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", email.To, ctx.Err())
	}
}

// LogSender пишет ссылки в лог вместо отправки (email.disabled)
type LogSender struct {
	links Links
}

func NewLogSender(cfg *config.Config) *LogSender {
	return &LogSender{links: LinksFrom(cfg)}
}

func (s *LogSender) SendVerification(ctx context.Context, to, name, token string) error {
	logger.CtxInfo(ctx, "Email delivery disabled, verification link", "to", to, "url", s.links.Verification(token))
	return nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, name, token string) error {
	logger.CtxInfo(ctx, "Email delivery disabled, password reset link", "to", to, "url", s.links.PasswordReset(token))
	return nil
}

// NewSender выбирает реализацию по конфигу
func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.Email.Disabled {
		return NewLogSender(cfg), nil
	}
	return NewSMTPSender(cfg)
}
