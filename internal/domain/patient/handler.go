package patient

import (
	"errors"
	"strconv"
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
	all := g.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))
	all.GET("/patients", h.list)
	all.GET("/patients/:id", h.get)
	all.GET("/patients/shf/:shfID", h.getBySHFID)
	all.POST("/patients", h.create)
	all.PUT("/patients/:id", h.update)

	// Phase transitions need clinical judgement; data entry cannot drive them.
	clinical := g.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator))
	clinical.POST("/patients/:id/advance-phase", h.advancePhase)
	clinical.PATCH("/patients/:id/phases/:phase/status", h.setPhaseStatus)
}

type createPatientRequest struct {
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       string     `json:"gender"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	PhoneNumber  *string    `json:"phone_number"`
	GuardianName *string    `json:"guardian_name"`
	LocationID   *uuid.UUID `json:"location_id"`
	City         *string    `json:"city"`
	Status       string     `json:"status"`
}

func (h *Handler) create(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	p := &Patient{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		PhoneNumber:  req.PhoneNumber,
		GuardianName: req.GuardianName,
		LocationID:   req.LocationID,
		City:         req.City,
		Status:       req.Status,
	}
	if err := h.svc.CreatePatient(c.Request().Context(), p, auth.UserIDFromContext(c.Request().Context())); err != nil {
		if errors.Is(err, ErrValidation) {
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c, "failed to create patient")
	}
	return respond.Created(c, "patient registered", p)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	p, phases, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "patient not found")
		}
		return respond.Internal(c, "failed to load patient")
	}
	return respond.OK(c, "", map[string]interface{}{"patient": p, "phases": phases})
}

func (h *Handler) getBySHFID(c echo.Context) error {
	p, err := h.svc.GetBySHFID(c.Request().Context(), c.Param("shfID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "patient not found")
		}
		return respond.Internal(c, "failed to load patient")
	}
	return respond.OK(c, "", p)
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	p := &Patient{
		ID:           id,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		PhoneNumber:  req.PhoneNumber,
		GuardianName: req.GuardianName,
		LocationID:   req.LocationID,
		City:         req.City,
		Status:       req.Status,
	}
	if err := h.svc.UpdatePatient(c.Request().Context(), p, auth.UserIDFromContext(c.Request().Context())); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "patient not found")
		}
		return respond.Internal(c, "failed to update patient")
	}
	return respond.OK(c, "patient updated", p)
}

func (h *Handler) list(c echo.Context) error {
	params := pagination.FromContext(c)

	filter := ListFilter{
		Search:           c.QueryParam("search"),
		Gender:           c.QueryParam("gender"),
		Status:           c.QueryParam("status"),
		IncludeArchived:  c.QueryParam("include_archived") == "true",
		ScopeLocationIDs: auth.LocationScopeFromContext(c.Request().Context()),
	}
	if raw := c.QueryParam("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respond.BadRequest(c, "invalid location_id")
		}
		filter.LocationID = &id
	}
	if raw := c.QueryParam("phase"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPhase {
			return respond.BadRequest(c, "invalid phase")
		}
		filter.Phase = &n
	}

	patients, total, err := h.svc.ListPatients(c.Request().Context(), filter, params.Limit, params.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list patients")
	}
	return respond.OK(c, "", pagination.NewResponse(patients, total, params.Limit, params.Offset))
}

type advancePhaseRequest struct {
	Phase int `json:"phase"`
}

func (h *Handler) advancePhase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	var req advancePhaseRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	next, err := h.svc.AdvancePhase(c.Request().Context(), id, req.Phase, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "patient not found")
		case errors.Is(err, ErrValidation), errors.Is(err, ErrPhaseNotCompleted), errors.Is(err, ErrPhaseExists):
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c, "failed to advance patient")
	}
	return respond.Created(c, "patient advanced", next)
}

type phaseStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setPhaseStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	phase, err := strconv.Atoi(c.Param("phase"))
	if err != nil {
		return respond.BadRequest(c, "invalid phase")
	}
	var req phaseStatusRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	if err := h.svc.SetPhaseStatus(c.Request().Context(), id, phase, req.Status, auth.UserIDFromContext(c.Request().Context())); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "patient not found")
		}
		if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrValidation) {
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c, "failed to update phase status")
	}
	return respond.OK(c, "phase status updated", nil)
}

