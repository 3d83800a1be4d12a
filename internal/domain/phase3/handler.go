package phase3

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/domain/inventory"
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
	p3 := g.Group("/phase3", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))

	p3.POST("/registrations", h.createRegistration)
	p3.GET("/registrations/:id", h.getRegistration)
	p3.GET("/patients/:patientID/registrations", h.listRegistrations)

	p3.POST("/assessments", h.addAssessment)
	p3.GET("/patients/:patientID/assessments", h.listAssessments)

	p3.POST("/battery-dispenses", h.dispenseBatteries)
	p3.GET("/patients/:patientID/battery-dispenses", h.listBatteryDispenses)

	p3.POST("/final-qc", h.addFinalQC)
	p3.GET("/patients/:patientID/final-qc", h.listFinalQCs)
}

type registrationRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationDate *time.Time `json:"registration_date"`
	AftercareSite    string     `json:"aftercare_site"`
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
		AftercareSite:    req.AftercareSite,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.CreateRegistration(c.Request().Context(), reg); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "phase 3 registration created", reg)
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

type assessmentRequest struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	VisitDate      *time.Time `json:"visit_date"`
	WearsLeft      bool       `json:"wears_left"`
	WearsRight     bool       `json:"wears_right"`
	DeviceWorking  bool       `json:"device_working"`
	Complaints     *string    `json:"complaints"`
	Notes          *string    `json:"notes"`
}

func (h *Handler) addAssessment(c echo.Context) error {
	var req assessmentRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	a := &AftercareAssessment{
		PatientID:      req.PatientID,
		RegistrationID: req.RegistrationID,
		VisitDate:      orNow(req.VisitDate),
		UsageCode:      earcode.Encode(req.WearsLeft, req.WearsRight),
		DeviceWorking:  req.DeviceWorking,
		Complaints:     req.Complaints,
		Notes:          req.Notes,
		CreatedBy:      auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddAssessment(c.Request().Context(), a); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "aftercare assessment recorded", a)
}

func (h *Handler) listAssessments(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListAssessments(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list assessments")
	}
	return respond.OK(c, "", out)
}

type batteryDispenseRequest struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	DispenseDate   *time.Time `json:"dispense_date"`
	ItemCode       string     `json:"item_code"`
	Packs          int        `json:"packs"`
	Notes          *string    `json:"notes"`
}

func (h *Handler) dispenseBatteries(c echo.Context) error {
	var req batteryDispenseRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	d := &BatteryDispense{
		PatientID:      req.PatientID,
		RegistrationID: req.RegistrationID,
		DispenseDate:   orNow(req.DispenseDate),
		ItemCode:       req.ItemCode,
		Packs:          req.Packs,
		Notes:          req.Notes,
		CreatedBy:      auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.DispenseBatteries(c.Request().Context(), d); err != nil {
		switch {
		case errors.Is(err, inventory.ErrInsufficientStock):
			return respond.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, inventory.ErrItemNotFound):
			return respond.BadRequest(c, err.Error())
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "batteries dispensed", d)
}

func (h *Handler) listBatteryDispenses(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListBatteryDispenses(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list battery dispenses")
	}
	return respond.OK(c, "", out)
}

type finalQCRequest struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	CheckDate      *time.Time `json:"check_date"`
	Passed         bool       `json:"passed"`
	Issues         *string    `json:"issues"`
}

func (h *Handler) addFinalQC(c echo.Context) error {
	var req finalQCRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	qc := &FinalQC{
		PatientID:      req.PatientID,
		RegistrationID: req.RegistrationID,
		CheckDate:      orNow(req.CheckDate),
		Passed:         req.Passed,
		Issues:         req.Issues,
		CreatedBy:      auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddFinalQC(c.Request().Context(), qc); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "final QC recorded", qc)
}

func (h *Handler) listFinalQCs(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListFinalQCs(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list final QC records")
	}
	return respond.OK(c, "", out)
}

func orNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
