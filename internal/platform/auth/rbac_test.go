package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		user     []string
		required []string
		want     bool
	}{
		{[]string{RoleCoordinator}, []string{RoleAdmin, RoleCoordinator}, true},
		{[]string{RoleDoctor}, []string{RoleAdmin, RoleCoordinator}, false},
		{[]string{RoleAdmin}, []string{RoleCoordinator}, true},
		{nil, []string{RoleDoctor}, false},
	}
	for _, tt := range tests {
		if got := HasAnyRole(tt.user, tt.required...); got != tt.want {
			t.Errorf("HasAnyRole(%v, %v) = %v, want %v", tt.user, tt.required, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), "doc-1", []string{RoleDoctor}))
	rec := httptest.NewRecorder()
	err := RequireRole(RoleAdmin, RoleCoordinator)(handler)(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), "coord-1", []string{RoleCoordinator}))
	rec = httptest.NewRecorder()
	if err := RequireRole(RoleAdmin, RoleCoordinator)(handler)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
