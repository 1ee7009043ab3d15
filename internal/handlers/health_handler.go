package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"netowork_backend/internal/logger"
	"netowork_backend/pkg/apperrors"
)

const healthTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc позволяет передать функцию как Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthCheck - именованная зависимость
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
}

// Health godoc
// @Summary      Состояние зависимостей
// @Tags         health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      503  {object}  apperrors.ErrorResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	errs := make([]error, len(h.checks))
	var g errgroup.Group
	for i, check := range h.checks {
		g.Go(func() error {
			errs[i] = check.Pinger.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status := make(map[string]string, len(h.checks))
	for i, check := range h.checks {
		if errs[i] != nil {
			logger.CtxWithError(c.Request.Context(), "Health check failed", errs[i], "dependency", check.Name)
			apperrors.HandleError(c, apperrors.NewHealthCheckError(errs[i], check.Name+" is unavailable"))
			return
		}
		status[check.Name] = "ok"
	}

	respond(c, http.StatusOK, status)
}
