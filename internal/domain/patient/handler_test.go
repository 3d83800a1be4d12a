package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
)

// newTestServer registers the patient routes behind a middleware seeding
// the authenticated identity the way the bearer-token middleware does.
func newTestServer(repo Repository, roles, locationIDs []string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, auth.UserIDKey, "u-1")
			ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
			ctx = context.WithValue(ctx, auth.UserLocationsKey, locationIDs)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(newTestService(repo)).RegisterRoutes(g)
	return e
}

func listTotal(t *testing.T, body []byte) int {
	t.Helper()
	var envelope struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data.Total
}

func seedTwoLocations(repo *mockRepo) (locA, locB uuid.UUID) {
	locA, locB = uuid.New(), uuid.New()
	for i, loc := range []uuid.UUID{locA, locB} {
		id := uuid.New()
		l := loc
		repo.patients[id] = &Patient{
			ID:         id,
			FirstName:  []string{"Jean", "Aline"}[i],
			LastName:   "Mugisha",
			LocationID: &l,
			Status:     "active",
		}
	}
	return locA, locB
}

func TestListScopesCoordinatorToAssignedLocations(t *testing.T) {
	repo := newMockRepo()
	locA, _ := seedTwoLocations(repo)

	e := newTestServer(repo, []string{auth.RoleCityCoordinator}, []string{locA.String()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if total := listTotal(t, rec.Body.Bytes()); total != 1 {
		t.Errorf("total = %d, want 1 (only the assigned location's patient)", total)
	}
}

func TestListUnscopedForAdmin(t *testing.T) {
	repo := newMockRepo()
	seedTwoLocations(repo)

	e := newTestServer(repo, []string{auth.RoleAdmin}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if total := listTotal(t, rec.Body.Bytes()); total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestCreateMapsValidationTo400AndStorageTo500(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo, []string{auth.RoleClinician}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients",
		strings.NewReader(`{"last_name":"Mugisha"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing first_name: status = %d, want 400", rec.Code)
	}

	repo.failOn = "Create"
	req = httptest.NewRequest(http.MethodPost, "/api/v1/patients",
		strings.NewReader(`{"first_name":"Jean","last_name":"Mugisha"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("storage failure: status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "create failed") {
		t.Error("internal error text must not leak to the client")
	}
}

func TestAdvancePhaseStorageFailureReturns500(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	repo.patients[id] = &Patient{ID: id, FirstName: "Jean", Status: "active"}
	repo.phases[id] = []*Phase{{ID: uuid.New(), PatientID: id, PhaseID: 1, Status: StatusCompleted}}
	repo.failOn = "CreatePhase"

	e := newTestServer(repo, []string{auth.RoleClinician}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/"+id.String()+"/advance-phase",
		strings.NewReader(`{"phase":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "create phase failed") {
		t.Error("internal error text must not leak to the client")
	}
}

func TestAdvancePhaseGateStillReturns400(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	repo.patients[id] = &Patient{ID: id, FirstName: "Jean", Status: "active"}
	repo.phases[id] = []*Phase{{ID: uuid.New(), PatientID: id, PhaseID: 1, Status: StatusInProgress}}

	e := newTestServer(repo, []string{auth.RoleClinician}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/"+id.String()+"/advance-phase",
		strings.NewReader(`{"phase":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
