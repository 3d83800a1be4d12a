package auditlog

import (
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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/audit-logs", auth.RequireRole(auth.RoleAdmin))
	g.GET("", h.List)
	g.GET("/:table/:recordID", h.ListByRecord)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.svc.List(c.Request().Context(), c.QueryParam("table"), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list audit logs")
	}
	return respond.OK(c, "", pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByRecord(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.svc.ListByRecord(c.Request().Context(),
		c.Param("table"), c.Param("recordID"), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list audit logs")
	}
	return respond.OK(c, "", pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}
