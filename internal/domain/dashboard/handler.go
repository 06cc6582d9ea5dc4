package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medshift/medshift/internal/platform/apperr"
	"github.com/medshift/medshift/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/dashboard", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleDoctor))
	g.GET("", h.Overview)
	g.GET("/stats", h.GetStats)
	g.GET("/charts", h.GetCharts)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), ParsePeriod(c.QueryParam("period")))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetCharts(c echo.Context) error {
	charts, err := h.svc.Charts(c.Request().Context(), ParsePeriod(c.QueryParam("period")))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, charts)
}

// Overview returns stats and charts for one period in a single document.
func (h *Handler) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	p := ParsePeriod(c.QueryParam("period"))

	stats, err := h.svc.Stats(ctx, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	charts, err := h.svc.Charts(ctx, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"period": p,
		"stats":  stats,
		"charts": charts,
	})
}
