package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
)

// stubFleetClient fails loudly on any call a test did not arrange.
type stubFleetClient struct {
	loginFn          func(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error)
	currentUserFn    func(ctx context.Context, token string) (*domain.User, error)
	listUsersFn      func(ctx context.Context, token string) ([]domain.User, error)
	createUserFn     func(ctx context.Context, token string, in ports.CreateUserInput) (*domain.User, error)
	updateUserFn     func(ctx context.Context, token string, id int64, in ports.UpdateUserInput) (*domain.User, error)
	deleteUserFn     func(ctx context.Context, token string, id int64) error
	changePasswordFn func(ctx context.Context, token string, id int64, in ports.ChangePasswordInput) error
	forgotPasswordFn func(ctx context.Context, email string) (string, error)
	profileFn        func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubFleetClient) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	if s.loginFn == nil {
		panic("unexpected Login call")
	}
	return s.loginFn(ctx, creds)
}

func (s *stubFleetClient) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if s.currentUserFn == nil {
		panic("unexpected CurrentUser call")
	}
	return s.currentUserFn(ctx, token)
}

func (s *stubFleetClient) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	if s.listUsersFn == nil {
		panic("unexpected ListUsers call")
	}
	return s.listUsersFn(ctx, token)
}

func (s *stubFleetClient) CreateUser(ctx context.Context, token string, in ports.CreateUserInput) (*domain.User, error) {
	if s.createUserFn == nil {
		panic("unexpected CreateUser call")
	}
	return s.createUserFn(ctx, token, in)
}

func (s *stubFleetClient) UpdateUser(ctx context.Context, token string, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	if s.updateUserFn == nil {
		panic("unexpected UpdateUser call")
	}
	return s.updateUserFn(ctx, token, id, in)
}

func (s *stubFleetClient) DeleteUser(ctx context.Context, token string, id int64) error {
	if s.deleteUserFn == nil {
		panic("unexpected DeleteUser call")
	}
	return s.deleteUserFn(ctx, token, id)
}

func (s *stubFleetClient) ChangePassword(ctx context.Context, token string, id int64, in ports.ChangePasswordInput) error {
	if s.changePasswordFn == nil {
		panic("unexpected ChangePassword call")
	}
	return s.changePasswordFn(ctx, token, id, in)
}

func (s *stubFleetClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	if s.forgotPasswordFn == nil {
		panic("unexpected ForgotPassword call")
	}
	return s.forgotPasswordFn(ctx, email)
}

func (s *stubFleetClient) Profile(ctx context.Context, token string) (*domain.User, error) {
	if s.profileFn == nil {
		panic("unexpected Profile call")
	}
	return s.profileFn(ctx, token)
}

// stubSessionStore records calls and serves a fixed session.
type stubSessionStore struct {
	session domain.Session

	loginSID    string
	loginToken  string
	loggedOut   []string
	loginCalled bool
}

func (s *stubSessionStore) Login(_ context.Context, sid, token string) {
	s.loginCalled = true
	s.loginSID = sid
	s.loginToken = token
}

func (s *stubSessionStore) Logout(_ context.Context, sid string) {
	s.loggedOut = append(s.loggedOut, sid)
}

func (s *stubSessionStore) Get(context.Context, string) domain.Session {
	return s.session
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer
	e.Validator = NewValidator()
	return e
}

// formRequest builds a POST context carrying an urlencoded form.
func formRequest(e *echo.Echo, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func getRequest(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser injects the identity the Session middleware would have set.
func asUser(c echo.Context, user *domain.User) {
	c.Set(middleware.ContextUser, user)
	c.Set(middleware.ContextToken, "tok-1")
	c.Set(middleware.ContextSessionID, "sid-1")
}

func adminUser() *domain.User {
	return &domain.User{ID: 1, FullName: "Ana Torres", Email: "ana@example.com", Role: domain.RoleAdmin}
}

func technicianUser() *domain.User {
	return &domain.User{ID: 2, FullName: "Teo Brandt", Email: "teo@example.com", Role: domain.RoleTechnician}
}
