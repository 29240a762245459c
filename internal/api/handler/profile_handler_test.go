package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
	"github.com/printwatch/fleet-console/internal/infrastructure/fleetapi"
)

func TestProfile_RendersFreshRecord(t *testing.T) {
	fleet := &stubFleetClient{
		profileFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != "tok-1" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &domain.User{ID: 1, FullName: "Ana Torres", Email: "ana@example.com", Role: domain.RoleAdmin}, nil
		},
	}
	h := NewProfileHandler(fleet, &stubSessionStore{}, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := getRequest(e, "/profile")
	asUser(c, adminUser())

	if err := h.Profile(c); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "ana@example.com") {
		t.Fatalf("expected profile fields, got: %s", rec.Body.String())
	}
}

func TestProfile_UpstreamErrorShowsBanner(t *testing.T) {
	fleet := &stubFleetClient{
		profileFn: func(context.Context, string) (*domain.User, error) {
			return nil, &fleetapi.APIError{StatusCode: http.StatusBadGateway, Message: "Failed to load user profile"}
		},
	}
	h := NewProfileHandler(fleet, &stubSessionStore{}, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := getRequest(e, "/profile")
	asUser(c, adminUser())

	if err := h.Profile(c); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Failed to load user profile. Please try again.") {
		t.Fatalf("expected load-failure banner, got: %s", rec.Body.String())
	}
}

func TestChangePassword_MismatchBlockedBeforeFleetCall(t *testing.T) {
	// No changePasswordFn arranged: a fleet call panics the test.
	h := NewProfileHandler(&stubFleetClient{}, &stubSessionStore{}, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := formRequest(e, "/profile/password", url.Values{
		"currentPassword":    {"old-pass"},
		"newPassword":        {"brand-new-pass"},
		"confirmNewPassword": {"different-pass"},
	})
	asUser(c, adminUser())

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "New password and confirmation do not match.") {
		t.Fatalf("expected mismatch message, got: %s", rec.Body.String())
	}
}

func TestChangePassword_TooShortBlockedBeforeFleetCall(t *testing.T) {
	h := NewProfileHandler(&stubFleetClient{}, &stubSessionStore{}, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := formRequest(e, "/profile/password", url.Values{
		"currentPassword":    {"old-pass"},
		"newPassword":        {"short"},
		"confirmNewPassword": {"short"},
	})
	asUser(c, adminUser())

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "New password must be at least 8 characters long.") {
		t.Fatalf("expected length message, got: %s", rec.Body.String())
	}
}

func TestChangePassword_SuccessEndsSession(t *testing.T) {
	var got ports.ChangePasswordInput
	fleet := &stubFleetClient{
		changePasswordFn: func(_ context.Context, token string, id int64, in ports.ChangePasswordInput) error {
			if token != "tok-1" || id != 1 {
				t.Fatalf("unexpected call: token=%s id=%d", token, id)
			}
			got = in
			return nil
		},
	}
	store := &stubSessionStore{}
	h := NewProfileHandler(fleet, store, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := formRequest(e, "/profile/password", url.Values{
		"currentPassword":    {"old-pass"},
		"newPassword":        {"brand-new-pass"},
		"confirmNewPassword": {"brand-new-pass"},
	})
	asUser(c, adminUser())

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if got.CurrentPassword != "old-pass" || got.NewPassword != "brand-new-pass" {
		t.Fatalf("unexpected input forwarded: %+v", got)
	}
	if len(store.loggedOut) != 1 || store.loggedOut[0] != "sid-1" {
		t.Fatalf("expected forced logout, got %v", store.loggedOut)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Password changed successfully! You will be redirected to login.") {
		t.Fatalf("expected success message, got: %s", body)
	}
	if !strings.Contains(body, "url=/login") {
		t.Fatalf("expected redirect-to-login refresh, got: %s", body)
	}

	var cleared bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "fleet_session" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie not cleared")
	}
}

func TestChangePassword_WrongCurrentPasswordShowsServerMessage(t *testing.T) {
	fleet := &stubFleetClient{
		changePasswordFn: func(context.Context, string, int64, ports.ChangePasswordInput) error {
			return &fleetapi.APIError{StatusCode: http.StatusBadRequest, Message: "Current password is incorrect"}
		},
	}
	store := &stubSessionStore{}
	h := NewProfileHandler(fleet, store, zerolog.Nop())

	e := newTestEcho(t)
	c, rec := formRequest(e, "/profile/password", url.Values{
		"currentPassword":    {"wrong"},
		"newPassword":        {"brand-new-pass"},
		"confirmNewPassword": {"brand-new-pass"},
	})
	asUser(c, adminUser())

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Current password is incorrect") {
		t.Fatalf("expected server message, got: %s", rec.Body.String())
	}
	if len(store.loggedOut) != 0 {
		t.Fatal("failed change must not end the session")
	}
}
