package dashboard

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	dash := g.Group("/dashboard", auth.RequireRole(auth.RoleClinician,
		auth.RoleCityCoordinator, auth.RoleCountryCoordinator))
	dash.GET("/overview", h.overview)
	dash.GET("/phase-funnel", h.phaseFunnel)
	dash.GET("/demographics", h.demographics)
	dash.GET("/registrations", h.registrations)
	dash.GET("/geography", h.geography)
}

func (h *Handler) overview(c echo.Context) error {
	o, err := h.svc.Overview(c.Request().Context(), auth.LocationScopeFromContext(c.Request().Context()))
	if err != nil {
		return respond.Internal(c, "failed to load overview")
	}
	return respond.OK(c, "dashboard overview", o)
}

func (h *Handler) phaseFunnel(c echo.Context) error {
	funnel, err := h.svc.PhaseFunnel(c.Request().Context(), auth.LocationScopeFromContext(c.Request().Context()))
	if err != nil {
		return respond.Internal(c, "failed to load phase funnel")
	}
	return respond.OK(c, "phase funnel", funnel)
}

func (h *Handler) demographics(c echo.Context) error {
	d, err := h.svc.Demographics(c.Request().Context(), auth.LocationScopeFromContext(c.Request().Context()))
	if err != nil {
		return respond.Internal(c, "failed to load demographics")
	}
	return respond.OK(c, "demographics", d)
}

func (h *Handler) registrations(c echo.Context) error {
	months, _ := strconv.Atoi(c.QueryParam("months"))
	series, err := h.svc.RegistrationsPerMonth(c.Request().Context(), auth.LocationScopeFromContext(c.Request().Context()), months)
	if err != nil {
		return respond.Internal(c, "failed to load registration series")
	}
	return respond.OK(c, "registrations per month", series)
}

func (h *Handler) geography(c echo.Context) error {
	entries, err := h.svc.Geography(c.Request().Context(), auth.LocationScopeFromContext(c.Request().Context()))
	if err != nil {
		return respond.Internal(c, "failed to load geography")
	}
	return respond.OK(c, "geography", entries)
}
