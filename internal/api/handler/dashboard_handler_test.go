package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestDashboard_AdminSeesUsersLink(t *testing.T) {
	h := NewDashboardHandler()

	e := newTestEcho(t)
	c, rec := getRequest(e, "/dashboard")
	asUser(c, adminUser())

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Welcome, Ana Torres!") {
		t.Fatalf("expected greeting, got: %s", body)
	}
	if !strings.Contains(body, "Go to Users Page") {
		t.Fatalf("expected users link for admin, got: %s", body)
	}
}

func TestDashboard_TechnicianSeesNoManagementLink(t *testing.T) {
	h := NewDashboardHandler()

	e := newTestEcho(t)
	c, rec := getRequest(e, "/dashboard")
	asUser(c, technicianUser())

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Go to Users Page") {
		t.Fatalf("technician must not see the management link, got: %s", body)
	}
	if !strings.Contains(body, "You do not have administrative access to user management features.") {
		t.Fatalf("expected informational note, got: %s", body)
	}
}
