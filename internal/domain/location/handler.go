package location

import (
	"errors"

	"github.com/google/uuid"
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
	read := g.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))
	read.GET("/locations", h.list)
	read.GET("/locations/:id", h.get)

	write := g.Group("", auth.RequireRole(auth.RoleCountryCoordinator))
	write.POST("/locations", h.create)
	write.PUT("/locations/:id", h.update)
	write.DELETE("/locations/:id", h.deactivate)
}

type locationRequest struct {
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Region  *string `json:"region"`
	Country string  `json:"country"`
}

func (h *Handler) create(c echo.Context) error {
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	l := &Location{Name: req.Name, City: req.City, Region: req.Region, Country: req.Country}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), l, actor); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "location created", l)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid location id")
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "location not found")
		}
		return respond.Internal(c, "failed to load location")
	}
	return respond.OK(c, "", l)
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid location id")
	}
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	l := &Location{ID: id, Name: req.Name, City: req.City, Region: req.Region, Country: req.Country}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), l, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "location not found")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "location updated", l)
}

func (h *Handler) deactivate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid location id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Deactivate(c.Request().Context(), id, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "location not found")
		}
		return respond.Internal(c, "failed to deactivate location")
	}
	return respond.OK(c, "location deactivated", nil)
}

func (h *Handler) list(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respond.Internal(c, "failed to list locations")
	}
	return respond.OK(c, "", out)
}
