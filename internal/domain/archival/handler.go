package archival

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/domain/patient"
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
	arch := g.Group("/archival", auth.RequireRole(auth.RoleCityCoordinator, auth.RoleCountryCoordinator))
	arch.POST("/:patientID", h.archive)
	arch.POST("/:patientID/unarchive", h.unarchive)
	arch.GET("/:patientID", h.listByPatient)

	admin := g.Group("/archival", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.list)
	admin.POST("/run", h.run)
}

func (h *Handler) archive(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	archive, err := h.svc.Archive(c.Request().Context(), patientID, ReasonManual, actor)
	if err != nil {
		switch {
		case errors.Is(err, patient.ErrNotFound):
			return respond.NotFound(c, "patient not found")
		case errors.Is(err, ErrAlreadyArchived):
			return respond.Error(c, http.StatusConflict, err.Error())
		}
		return respond.Internal(c, "failed to archive patient")
	}
	return respond.Created(c, "patient archived", archive)
}

func (h *Handler) unarchive(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Unarchive(c.Request().Context(), patientID, actor); err != nil {
		switch {
		case errors.Is(err, patient.ErrNotFound):
			return respond.NotFound(c, "patient not found")
		case errors.Is(err, ErrNotArchived):
			return respond.Error(c, http.StatusConflict, err.Error())
		}
		return respond.Internal(c, "failed to unarchive patient")
	}
	return respond.OK(c, "patient unarchived", nil)
}

func (h *Handler) listByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list archives")
	}
	return respond.OK(c, "", out)
}

func (h *Handler) list(c echo.Context) error {
	params := pagination.FromContext(c)
	out, total, err := h.svc.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list archives")
	}
	return respond.OK(c, "", pagination.NewResponse(out, total, params.Limit, params.Offset))
}

func (h *Handler) run(c echo.Context) error {
	result, err := h.svc.RunAutoArchive(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			return respond.Error(c, http.StatusConflict, err.Error())
		}
		return respond.Internal(c, "auto-archive run failed")
	}
	return respond.OK(c, "auto-archive run finished", result)
}
