package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

var log *slog.Logger

// Options - настройки глобального логгера
type Options struct {
	Env           string // development | production | test
	Level         string // debug | info | warn | error
	InfoLogsPath  string // файл для всех записей (ротация раз в сутки)
	ErrorLogsPath string // файл только для ошибок
}

// Init инициализирует глобальный логгер.
// Development: текстовый вывод, production: JSON.
func Init(opts Options) error {
	level := parseLevel(opts.Level)

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Env != "test",
	}

	newHandler := func(w io.Writer, ho *slog.HandlerOptions) slog.Handler {
		if opts.Env == "development" || opts.Env == "test" {
			return slog.NewTextHandler(w, ho)
		}
		return slog.NewJSONHandler(w, ho)
	}

	handlers := []slog.Handler{newHandler(os.Stdout, handlerOpts)}

	if opts.InfoLogsPath != "" {
		w, err := newRotatingWriter(opts.InfoLogsPath)
		if err != nil {
			return err
		}
		handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
	}

	if opts.ErrorLogsPath != "" {
		w, err := newRotatingWriter(opts.ErrorLogsPath)
		if err != nil {
			return err
		}
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelError,
			AddSource: true,
		}))
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = fanoutHandler(handlers)
	}

	log = slog.New(handler)
	slog.SetDefault(log)
	return nil
}

func newRotatingWriter(path string) (io.Writer, error) {
	w, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(14*24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return w, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	if log == nil {
		_ = Init(Options{Env: "development", Level: "debug"})
	}
	return log
}

// SetLogger подменяет глобальный логгер (используется в тестах)
func SetLogger(l *slog.Logger) {
	log = l
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает новый логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// fanoutHandler пишет каждую запись во все вложенные обработчики
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, hh := range h {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}
