package importer

import (
	"errors"

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
	imp := g.Group("/import", auth.RequireRole(auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))
	imp.POST("/phase1", h.importPhase1)
}

func (h *Handler) importPhase1(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "missing file field")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return respond.Internal(c, "failed to read upload")
	}
	defer src.Close()

	actor := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Import(c.Request().Context(), src, actor)
	if err != nil {
		if errors.Is(err, ErrMissingHeader) {
			return respond.BadRequest(c, err.Error())
		}
		return respond.Internal(c, "import failed")
	}
	return respond.OK(c, "import finished", result)
}
