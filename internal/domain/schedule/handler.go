package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/pkg/pagination"
	"github.com/hearcare/hearcare/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	read := g.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))
	read.GET("/schedules", h.list)
	read.GET("/schedules/:id", h.get)

	manage := g.Group("", auth.RequireRole(auth.RoleCityCoordinator, auth.RoleCountryCoordinator))
	manage.POST("/schedules", h.create)
	manage.PUT("/schedules/:id", h.update)
	manage.DELETE("/schedules/:id", h.delete)
	manage.POST("/schedules/:id/notify", h.notify)
}

type scheduleRequest struct {
	Title      string     `json:"title"`
	LocationID uuid.UUID  `json:"location_id"`
	Phase      int        `json:"phase"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Notes      *string    `json:"notes"`
}

func (h *Handler) create(c echo.Context) error {
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	sched := &Schedule{
		Title:      req.Title,
		LocationID: req.LocationID,
		Phase:      req.Phase,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Notes:      req.Notes,
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), sched, actor); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "schedule created", sched)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid schedule id")
	}
	sched, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "schedule not found")
		}
		return respond.Internal(c, "failed to load schedule")
	}
	return respond.OK(c, "schedule", sched)
}

func (h *Handler) list(c echo.Context) error {
	params := pagination.FromContext(c)
	schedules, total, err := h.svc.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list schedules")
	}
	return respond.OK(c, "schedules",
		pagination.NewResponse(schedules, total, params.Limit, params.Offset))
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid schedule id")
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	sched := &Schedule{
		ID:         id,
		Title:      req.Title,
		LocationID: req.LocationID,
		Phase:      req.Phase,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Notes:      req.Notes,
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), sched, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "schedule not found")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "schedule updated", sched)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid schedule id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "schedule not found")
		}
		return respond.Internal(c, "failed to delete schedule")
	}
	return respond.OK(c, "schedule deleted", nil)
}

func (h *Handler) notify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid schedule id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Notify(c.Request().Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "schedule not found")
		case errors.Is(err, ErrNoRecipients):
			return respond.Error(c, http.StatusConflict, err.Error())
		default:
			return respond.Internal(c, "failed to send schedule notices")
		}
	}
	return respond.OK(c, "schedule notices sent", result)
}
