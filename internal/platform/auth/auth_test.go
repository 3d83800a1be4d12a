package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("u-1", "nurse1", []string{RoleClinician}, []string{"loc-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Username != "nurse1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !HasRole(claims.Roles, RoleClinician) {
		t.Error("clinician role missing from claims")
	}
	if len(claims.LocationIDs) != 1 || claims.LocationIDs[0] != "loc-1" {
		t.Errorf("location ids not carried in claims: %v", claims.LocationIDs)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, err := issuer.Issue("u-1", "nurse1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expired token should be rejected")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer(testSecret, time.Hour).Issue("u-1", "nurse1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := NewTokenIssuer("another-secret-another-secret-32", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("token signed with a different secret should be rejected")
	}
}

func doAuthed(t *testing.T, mw echo.MiddlewareFunc, header string) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID string
	handler := mw(func(c echo.Context) error {
		gotUserID = UserIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, gotUserID
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue("u-7", "coord", []string{RoleCityCoordinator}, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	code, userID := doAuthed(t, Middleware(issuer), "Bearer "+token)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if userID != "u-7" {
		t.Errorf("user id = %q, want u-7", userID)
	}
}

func TestMiddlewareRejectsBadRequests(t *testing.T) {
	mw := Middleware(NewTokenIssuer(testSecret, time.Hour))

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		if code, _ := doAuthed(t, mw, header); code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, code)
		}
	}
}

func requireWith(t *testing.T, userRoles []string, required ...string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, userRoles)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireRole(required...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	if code := requireWith(t, []string{RoleClinician}, RoleClinician); code != http.StatusOK {
		t.Errorf("matching role: status = %d", code)
	}
	if code := requireWith(t, []string{RoleDataEntry}, RoleClinician); code != http.StatusForbidden {
		t.Errorf("wrong role: status = %d", code)
	}
	if code := requireWith(t, []string{RoleAdmin}, RoleCountryCoordinator); code != http.StatusOK {
		t.Errorf("admin wildcard: status = %d", code)
	}
	if code := requireWith(t, nil, RoleClinician); code != http.StatusForbidden {
		t.Errorf("no roles: status = %d", code)
	}
}

func TestLocationScopeFromContext(t *testing.T) {
	locID := "0b8f7a6e-2c3d-4e5f-8a9b-0c1d2e3f4a5b"
	ctx := context.WithValue(context.Background(), UserRolesKey, []string{RoleCityCoordinator})
	ctx = context.WithValue(ctx, UserLocationsKey, []string{locID, "not-a-uuid"})

	scope := LocationScopeFromContext(ctx)
	if len(scope) != 1 || scope[0].String() != locID {
		t.Errorf("scope = %v, want just %s", scope, locID)
	}

	adminCtx := context.WithValue(context.Background(), UserRolesKey, []string{RoleAdmin})
	adminCtx = context.WithValue(adminCtx, UserLocationsKey, []string{locID})
	if scope := LocationScopeFromContext(adminCtx); scope != nil {
		t.Errorf("admin should be unscoped, got %v", scope)
	}

	if scope := LocationScopeFromContext(context.Background()); scope != nil {
		t.Errorf("no assignments should mean no scope, got %v", scope)
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleCityCoordinator) {
		t.Error("known role rejected")
	}
	if ValidRole("Superuser") {
		t.Error("unknown role accepted")
	}
}
