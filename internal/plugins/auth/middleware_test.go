package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// mockAuthService implements AuthService for middleware tests. Only
// Authenticate is exercised here.
type mockAuthService struct {
	authenticateFn func(ctx context.Context, bearerToken string) (*User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, input SignupInput) (*User, error) {
	return nil, nil
}

func (m *mockAuthService) ConfirmEmail(ctx context.Context, plainToken string) (string, *User, error) {
	return "", nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	return "", nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) error {
	return nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, bearerToken string) (*User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, bearerToken)
	}
	return nil, apperror.NewUnauthorized("you are not logged in, please log in to get access")
}

// runProtected sends a request with the given Authorization header through
// RequireAuth and a handler that records the injected identity.
func runProtected(t *testing.T, svc AuthService, authHeader string) (*httptest.ResponseRecorder, *User, string) {
	t.Helper()

	e := echo.New()
	var gotUser *User
	var gotID string
	handler := RequireAuth(svc)(func(c echo.Context) error {
		gotUser = CurrentUser(c)
		gotID = UserID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		// Map domain errors the way the app error handler does.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.Code, map[string]string{"message": appErr.Message})
		} else {
			e.HTTPErrorHandler(err, c)
		}
	}
	return rec, gotUser, gotID
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, bearerToken string) (*User, error) {
			if bearerToken != "good-token" {
				t.Errorf("expected bearer token good-token, got %q", bearerToken)
			}
			return &User{ID: "user-1", Email: "alice@example.com"}, nil
		},
	}

	rec, user, id := runProtected(t, svc, "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user == nil || user.ID != "user-1" {
		t.Error("expected authenticated user in context")
	}
	if id != "user-1" {
		t.Errorf("expected user ID user-1 in context, got %q", id)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	called := false
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, bearerToken string) (*User, error) {
			called = true
			return nil, nil
		},
	}

	rec, _, _ := runProtected(t, svc, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called without a bearer token")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	svc := &mockAuthService{}

	for _, header := range []string{"good-token", "Basic abc123", "Bearer", "Bearer "} {
		rec, _, _ := runProtected(t, svc, header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestRequireAuth_RejectedToken(t *testing.T) {
	svc := &mockAuthService{} // Authenticate defaults to unauthorized.

	rec, user, _ := runProtected(t, svc, "Bearer revoked-or-expired")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if user != nil {
		t.Error("no user must be injected on rejection")
	}
}

func TestRequireAuth_CaseInsensitiveScheme(t *testing.T) {
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, bearerToken string) (*User, error) {
			return &User{ID: "user-1"}, nil
		},
	}

	rec, _, _ := runProtected(t, svc, "bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for lowercase scheme, got %d", rec.Code)
	}
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if CurrentUser(c) != nil {
		t.Error("expected nil user on unauthenticated context")
	}
	if UserID(c) != "" {
		t.Error("expected empty user ID on unauthenticated context")
	}
}
