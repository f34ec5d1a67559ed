package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authgate/session-service/internal/core/domain"
	"github.com/authgate/session-service/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Session, *domain.User, error)
	sessionFn  func(ctx context.Context, token string) (*domain.Session, error)
	sweepFn    func(ctx context.Context) (int, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessionFn(ctx, token)
}

func (s *stubAuthService) RunExpirySweep(ctx context.Context) (int, error) {
	return s.sweepFn(ctx)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
			if email != "alice@example.com" || password != "secret-pass" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			session := &domain.Session{
				ID:       "sess-1",
				UserID:   "user-1",
				Token:    "tok123",
				IssuedAt: issued,
				Duration: 24 * time.Hour,
			}
			return session, &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"email":"alice@example.com","password":"secret-pass"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["session_token"] != "tok123" {
		t.Fatalf("expected session_token, got %v", resp["session_token"])
	}
	if resp["expires_at"] == nil {
		t.Fatalf("expected expires_at in response")
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidCredentialsPropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := postJSON(e, "/auth/login", `{"email":"alice@example.com","password":"bad-pass"}`)
	err := handler.Login(c)
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials to propagate to the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", "{")
	_ = handler.Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/login", `{"email":"alice@example.com"}`)
	_ = handler.Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Email != "bob@example.com" || !input.Guest {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "user-2", Email: input.Email, Guest: input.Guest}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/register", `{"email":"bob@example.com","password":"longenough","guest":true}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "bob@example.com" || resp["guest"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/auth/register", `{"email":"bob@example.com","password":"short"}`)
	_ = handler.Register(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &domain.Session{
		ID:       "sess-1",
		UserID:   "user-1",
		Token:    "tok123",
		IssuedAt: issued,
		Duration: time.Hour,
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session", session)

	if err := handler.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["session_id"] != "sess-1" || resp["user_id"] != "user-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Session_MissingContext(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Session(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAdminHandler_Sweep(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		sweepFn: func(ctx context.Context) (int, error) {
			return 7, nil
		},
	}
	handler := NewAdminHandler(stub)

	c, rec := postJSON(e, "/internal/sweep", "")
	if err := handler.Sweep(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["removed_count"] != float64(7) {
		t.Fatalf("expected removed_count 7, got %v", resp["removed_count"])
	}
}
