package reports

import (
	"fmt"
	"net/http"
	"time"

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
	reports := g.Group("/reports", auth.RequireRole(auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator))
	reports.GET("/patients", h.patients)
	reports.GET("/inventory", h.inventory)
	reports.GET("/export", h.export)
}

func filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		// Make the bound inclusive of the whole day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.To = &t
	}
	if v := c.QueryParam("location_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid location_id %q", v)
		}
		f.LocationID = &id
	}
	return f, nil
}

func (h *Handler) patients(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	rows, err := h.svc.PatientReport(c.Request().Context(), f)
	if err != nil {
		return respond.Internal(c, "failed to build patient report")
	}
	return respond.OK(c, "patient report", rows)
}

func (h *Handler) inventory(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	rows, err := h.svc.InventoryReport(c.Request().Context(), f)
	if err != nil {
		return respond.Internal(c, "failed to build inventory report")
	}
	return respond.OK(c, "inventory report", rows)
}

func (h *Handler) export(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	buf, err := h.svc.Export(c.Request().Context(), f)
	if err != nil {
		return respond.Internal(c, "failed to build report workbook")
	}

	filename := fmt.Sprintf("hearcare-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
