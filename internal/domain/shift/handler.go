package shift

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medshift/medshift/internal/platform/apperr"
	"github.com/medshift/medshift/internal/platform/auth"
	"github.com/medshift/medshift/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleDoctor))
	read.GET("/shifts", h.ListShifts)
	read.GET("/shifts/:id", h.GetShift)
	read.GET("/shift-types", h.ListShiftTypes)
	read.GET("/shift-types/:id", h.GetShiftType)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator))
	write.POST("/shifts", h.CreateShift)
	write.PUT("/shifts/:id", h.UpdateShift)
	write.DELETE("/shifts/:id", h.DeleteShift)
	write.POST("/shifts/:id/pay", h.MarkAsPaid)
	write.POST("/shift-types", h.CreateShiftType)
	write.PUT("/shift-types/:id", h.UpdateShiftType)
	write.DELETE("/shift-types/:id", h.DeleteShiftType)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func bindInput(c echo.Context) (*Input, error) {
	var in Input
	if err := c.Bind(&in); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return nil, apperr.ToHTTP(err)
	}
	return &in, nil
}

// -- Shift Handlers --

func (h *Handler) CreateShift(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	sh, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, sh)
}

func (h *Handler) GetShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) ListShifts(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f ListFilter

	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid paid")
		}
		f.Paid = &paid
	}
	month, year := c.QueryParam("month"), c.QueryParam("year")
	if month != "" || year != "" {
		m, errM := strconv.Atoi(month)
		y, errY := strconv.Atoi(year)
		if errM != nil || errY != nil || m < 1 || m > 12 || y < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "month and year must be given together as numbers")
		}
		f.Month, f.Year = m, y
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	sh, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) DeleteShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAsPaid(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sh, err := h.svc.MarkAsPaid(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sh)
}

// -- Shift Type Handlers --

func (h *Handler) CreateShiftType(c echo.Context) error {
	var st ShiftType
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateShiftType(c.Request().Context(), &st); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetShiftType(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	st, err := h.svc.GetShiftType(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListShiftTypes(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListShiftTypes(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateShiftType(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var st ShiftType
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st.ID = id
	if err := h.svc.UpdateShiftType(c.Request().Context(), &st); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteShiftType(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteShiftType(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
