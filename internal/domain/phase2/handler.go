package phase2

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
	p2 := g.Group("/phase2", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator, auth.RoleDataEntry))

	p2.POST("/registrations", h.createRegistration)
	p2.GET("/registrations/:id", h.getRegistration)
	p2.GET("/patients/:patientID/registrations", h.listRegistrations)

	p2.POST("/fitting-table", h.addFittingTableRows)
	p2.GET("/patients/:patientID/fitting-table", h.listFittingTableRows)

	p2.POST("/counselings", h.addCounseling)
	p2.GET("/patients/:patientID/counselings", h.listCounselings)

	p2.POST("/final-qc", h.addFinalQC)
	p2.GET("/patients/:patientID/final-qc", h.listFinalQCs)

	// Dispensing devices is restricted to clinical staff.
	clinical := g.Group("/phase2", auth.RequireRole(auth.RoleClinician, auth.RoleCityCoordinator,
		auth.RoleCountryCoordinator))
	clinical.POST("/fittings", h.addFitting)
	p2.GET("/patients/:patientID/fittings", h.listFittings)
}

type registrationRequest struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	RegistrationDate *time.Time `json:"registration_date"`
	FittingSite      string     `json:"fitting_site"`
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
		FittingSite:      req.FittingSite,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.CreateRegistration(c.Request().Context(), reg); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "phase 2 registration created", reg)
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

type fittingTableRequest struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	Rows           []struct {
		Ear         string `json:"ear"`
		FrequencyHz int    `json:"frequency_hz"`
		ThresholdDB int    `json:"threshold_db"`
	} `json:"rows"`
}

func (h *Handler) addFittingTableRows(c echo.Context) error {
	var req fittingTableRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	rows := make([]*FittingTableRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, &FittingTableRow{
			Ear:         r.Ear,
			FrequencyHz: r.FrequencyHz,
			ThresholdDB: r.ThresholdDB,
			CreatedBy:   actor,
		})
	}
	if err := h.svc.AddFittingTableRows(c.Request().Context(), req.PatientID, req.RegistrationID, rows); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "fitting table saved", rows)
}

func (h *Handler) listFittingTableRows(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	rows, err := h.svc.ListFittingTableRows(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list fitting table")
	}
	return respond.OK(c, "", rows)
}

type fittingRequest struct {
	PatientID       uuid.UUID  `json:"patient_id"`
	RegistrationID  *uuid.UUID `json:"registration_id"`
	FittingDate     *time.Time `json:"fitting_date"`
	LeftEar         bool       `json:"left_ear"`
	RightEar        bool       `json:"right_ear"`
	DeviceItemCode  string     `json:"device_item_code"`
	BatteryItemCode string     `json:"battery_item_code"`
	BatteryPacks    int        `json:"battery_packs"`
	Notes           *string    `json:"notes"`
}

func (h *Handler) addFitting(c echo.Context) error {
	var req fittingRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	f := &Fitting{
		PatientID:       req.PatientID,
		RegistrationID:  req.RegistrationID,
		FittingDate:     orNow(req.FittingDate),
		FittedCode:      earcode.Encode(req.LeftEar, req.RightEar),
		DeviceItemCode:  req.DeviceItemCode,
		BatteryItemCode: req.BatteryItemCode,
		BatteryPacks:    req.BatteryPacks,
		Notes:           req.Notes,
		CreatedBy:       auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddFitting(c.Request().Context(), f); err != nil {
		switch {
		case errors.Is(err, inventory.ErrInsufficientStock):
			return respond.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, inventory.ErrItemNotFound):
			return respond.BadRequest(c, err.Error())
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "fitting recorded", f)
}

func (h *Handler) listFittings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListFittings(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list fittings")
	}
	return respond.OK(c, "", out)
}

type counselingRequest struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	SessionDate    *time.Time `json:"session_date"`
	Topics         *string    `json:"topics"`
	Notes          *string    `json:"notes"`
}

func (h *Handler) addCounseling(c echo.Context) error {
	var req counselingRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	cs := &Counseling{
		PatientID:      req.PatientID,
		RegistrationID: req.RegistrationID,
		SessionDate:    orNow(req.SessionDate),
		Topics:         req.Topics,
		Notes:          req.Notes,
		CreatedBy:      auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.AddCounseling(c.Request().Context(), cs); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "counseling recorded", cs)
}

func (h *Handler) listCounselings(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return respond.BadRequest(c, "invalid patient id")
	}
	out, err := h.svc.ListCounselings(c.Request().Context(), patientID)
	if err != nil {
		return respond.Internal(c, "failed to list counselings")
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
