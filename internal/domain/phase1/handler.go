package phase1

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/pkg/earcode"
	"github.com/hearcare/hearcare/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	p1 := g.Group("/phase1", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))

	p1.POST("/registrations", h.createRegistration)
	p1.GET("/registrations/:id", h.getRegistration)
	p1.GET("/patients/:patientID/registrations", h.listRegistrations)
	p1.PUT("/registrations/:id", h.updateRegistration)

	p1.POST("/ear-screenings", h.addEarScreening)
	p1.GET("/patients/:patientID/ear-screenings", h.listEarScreenings)

	p1.POST("/hearing-screenings", h.addHearingScreening)
	p1.GET("/patients/:patientID/hearing-screenings", h.listHearingScreenings)

	p1.POST("/ear-impressions", h.addEarImpression)
	p1.GET("/patients/:patientID/ear-impressions", h.listEarImpressions)
}

type registrationRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationDate *time.Time `json:"registration_date"`
	ScreeningSite    string     `json:"screening_site"`
	ReferralSource   *string    `json:"referral_source"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) createRegistration(c echo.Context) error {
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	reg := &Registration{
		PatientID:        req.PatientID,
		RegistrationDate: orNow(req.RegistrationDate),
		ScreeningSite:    req.ScreeningSite,
		ReferralSource:   req.ReferralSource,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.CreateRegistration(c.Request().Context(), reg); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "phase 1 registration created", reg)
}

func (h *Handler) getRegistration(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid registration id")
	}
	reg, err := h.svc.GetRegistration(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return respond.NotFound(c, "registration not found")
		}
		return respond.Internal(c, "failed to load registration")
	}
	return respond.OK(c, "", reg)
}

func (h *Handler) listRegistrations(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	regs, err := h.svc.ListRegistrations(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list registrations")
	}
	return respond.OK(c, "", regs)
}

func (h *Handler) updateRegistration(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid registration id")
	}
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	reg := &Registration{
		ID:               id,
		RegistrationDate: orNow(req.RegistrationDate),
		ScreeningSite:    req.ScreeningSite,
		ReferralSource:   req.ReferralSource,
		Notes:            req.Notes,
	}
	if err := h.svc.UpdateRegistration(c.Request().Context(), reg, auth.UserIDFromContext(c.Request().Context())); err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return respond.NotFound(c, "registration not found")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "registration updated", reg)
}

// earScreeningRequest carries the per-ear booleans the client sends; they
// are packed into ear codes before hitting storage.
type earScreeningRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationID   *uuid.UUID `json:"registration_id"`
	ScreeningDate    *time.Time `json:"screening_date"`
	WaxLeft          bool       `json:"wax_left"`
	WaxRight         bool       `json:"wax_right"`
	InfectionLeft    bool       `json:"infection_left"`
	InfectionRight   bool       `json:"infection_right"`
	PerforationLeft  bool       `json:"perforation_left"`
	PerforationRight bool       `json:"perforation_right"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) addEarScreening(c echo.Context) error {
	var req earScreeningRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	sc := &EarScreening{
		PatientID:       req.PatientID,
		RegistrationID:  req.RegistrationID,
		ScreeningDate:   orNow(req.ScreeningDate),
		WaxCode:         earcode.Encode(req.WaxLeft, req.WaxRight),
		InfectionCode:   earcode.Encode(req.InfectionLeft, req.InfectionRight),
		PerforationCode: earcode.Encode(req.PerforationLeft, req.PerforationRight),
		Notes:           req.Notes,
		CreatedBy:       auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddEarScreening(c.Request().Context(), sc); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "ear screening recorded", sc)
}

func (h *Handler) listEarScreenings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListEarScreenings(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list ear screenings")
	}
	return respond.OK(c, "", out)
}

type hearingScreeningRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationID   *uuid.UUID `json:"registration_id"`
	TestDate         *time.Time `json:"test_date"`
	LeftResult       string     `json:"left_result"`
	RightResult      string     `json:"right_result"`
	LeftThresholdDB  *int       `json:"left_threshold_db"`
	RightThresholdDB *int       `json:"right_threshold_db"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) addHearingScreening(c echo.Context) error {
	var req hearingScreeningRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	sc := &HearingScreening{
		PatientID:        req.PatientID,
		RegistrationID:   req.RegistrationID,
		TestDate:         orNow(req.TestDate),
		LeftResult:       req.LeftResult,
		RightResult:      req.RightResult,
		LeftThresholdDB:  req.LeftThresholdDB,
		RightThresholdDB: req.RightThresholdDB,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddHearingScreening(c.Request().Context(), sc); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "hearing screening recorded", sc)
}

func (h *Handler) listHearingScreenings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListHearingScreenings(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list hearing screenings")
	}
	return respond.OK(c, "", out)
}

type earImpressionRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationID   *uuid.UUID `json:"registration_id"`
	ImpressionDate   *time.Time `json:"impression_date"`
	LeftEar          bool       `json:"left_ear"`
	RightEar         bool       `json:"right_ear"`
	MaterialItemCode string     `json:"material_item_code"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) addEarImpression(c echo.Context) error {
	var req earImpressionRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	imp := &EarImpression{
		PatientID:        req.PatientID,
		RegistrationID:   req.RegistrationID,
		ImpressionDate:   orNow(req.ImpressionDate),
		ImpressionCode:   earcode.Encode(req.LeftEar, req.RightEar),
		MaterialItemCode: req.MaterialItemCode,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddEarImpression(c.Request().Context(), imp); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "ear impression recorded", imp)
}

func (h *Handler) listEarImpressions(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListEarImpressions(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list ear impressions")
	}
	return respond.OK(c, "", out)
}

func orNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
