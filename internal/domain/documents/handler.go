package documents

import (
	"errors"
	"net/http"

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
	docs := g.Group("/documents", auth.RequireRole(auth.RoleClinician,
		auth.RoleCityCoordinator, auth.RoleCountryCoordinator, auth.RoleDataEntry))
	docs.POST("", h.upload)
	docs.GET("/:id", h.download)
	docs.GET("/schedule/:scheduleID", h.listBySchedule)
	docs.GET("/patient/:patientID", h.listByPatient)

	manage := g.Group("/documents", auth.RequireRole(auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator))
	manage.DELETE("/:id", h.delete)
}

func optionalUUID(c echo.Context, field string) (*uuid.UUID, error) {
	v := c.FormValue(field)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *Handler) upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "missing file field")
	}
	scheduleID, err := optionalUUID(c, "schedule_id")
	if err != nil {
		return respond.BadRequest(c, "invalid schedule_id")
	}
	patientID, err := optionalUUID(c, "patient_id")
	if err != nil {
		return respond.BadRequest(c, "invalid patient_id")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respond.Internal(c, "failed to read upload")
	}
	defer src.Close()

	actor := auth.UserIDFromContext(c.Request().Context())
	doc, err := h.svc.Save(c.Request().Context(), Upload{
		FileName:   fileHeader.Filename,
		Size:       fileHeader.Size,
		Reader:     src,
		ScheduleID: scheduleID,
		PatientID:  patientID,
	}, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			return respond.Error(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrUnsupportedType):
			return respond.Error(c, http.StatusUnsupportedMediaType, err.Error())
		default:
			return respond.Internal(c, "failed to store document")
		}
	}
	return respond.Created(c, "document uploaded", doc)
}

func (h *Handler) download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid document id")
	}
	doc, f, err := h.svc.Open(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "document not found")
		}
		return respond.Internal(c, "failed to open document")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+doc.FileName+`"`)
	return c.Stream(http.StatusOK, doc.ContentType, f)
}

func (h *Handler) listBySchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("scheduleID"))
	if err != nil {
		return respond.BadRequest(c, "invalid schedule id")
	}
	docs, err := h.svc.ListBySchedule(c.Request().Context(), id)
	if err != nil {
		return respond.Internal(c, "failed to list documents")
	}
	return respond.OK(c, "documents", docs)
}

func (h *Handler) listByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	docs, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return respond.Internal(c, "failed to list documents")
	}
	return respond.OK(c, "documents", docs)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid document id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "document not found")
		}
		return respond.Internal(c, "failed to delete document")
	}
	return respond.OK(c, "document deleted", nil)
}
