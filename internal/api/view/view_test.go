package view

import (
	"strings"
	"testing"

	"github.com/printwatch/fleet-console/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: 1, FullName: "Ana Torres", Email: "ana@example.com", Role: domain.RoleAdmin}
}

// Every screen must execute against representative data; a template error
// here would otherwise only surface in production.
func TestRenderer_AllScreensExecute(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	user := testUser()
	screens := map[string]*Data{
		"login":            {Title: "Login", Form: map[string]string{"email": "ana@example.com"}},
		"forgot_password":  {Title: "Reset Password", Message: "sent", Form: map[string]string{}},
		"checking":         {Title: "Loading", RefreshTo: "/dashboard"},
		"dashboard":        {Title: "Dashboard", User: user},
		"users":            {Title: "Users", User: user, Users: []domain.User{*user}},
		"user_new":         {Title: "Add User", User: user, Form: map[string]string{"role": "VIEWER"}},
		"user_edit":        {Title: "Edit User", User: user, EditUser: user, Form: map[string]string{"role": "ADMIN"}},
		"profile":          {Title: "My Profile", User: user, Profile: user},
		"change_password":  {Title: "Change Password", User: user},
		"password_changed": {Title: "Password Changed", Message: "done", RefreshTo: "/login"},
		"denied":           {Title: "Access Denied", User: user},
		"error":            {Title: "Error", Error: "boom"},
	}

	for name, data := range screens {
		var sb strings.Builder
		if err := r.Render(&sb, name, data, nil); err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		if !strings.Contains(sb.String(), "<html") {
			t.Fatalf("render %s produced no layout: %s", name, sb.String())
		}
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	var sb strings.Builder
	if err := r.Render(&sb, "missing", &Data{}, nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	var sb strings.Builder
	data := &Data{Title: "Login", Error: `<script>alert(1)</script>`, Form: map[string]string{}}
	if err := r.Render(&sb, "login", data, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(sb.String(), "<script>alert(1)</script>") {
		t.Fatal("user content rendered unescaped")
	}
}

// Non-admin rows carry no management controls; the sidebar drops the Users
// link entirely for roles that cannot view the list.
func TestRenderer_RoleGatedNavigation(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	viewer := &domain.User{ID: 3, FullName: "Vi", Email: "vi@example.com", Role: domain.RoleViewer}
	var sb strings.Builder
	if err := r.Render(&sb, "dashboard", &Data{Title: "Dashboard", User: viewer}, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := sb.String()
	if strings.Contains(body, `href="/users"`) {
		t.Fatalf("viewer must not see the users link: %s", body)
	}
	if !strings.Contains(body, "You do not have administrative access to user management features.") {
		t.Fatalf("expected viewer notice: %s", body)
	}
}
