package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/core/domain"
)

type stubAuthenticator struct {
	principal *domain.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Resolve(_ context.Context, token string) (*domain.Principal, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("middleware chain: %v", err)
	}
	return rec
}

func decodeRejection(t *testing.T, rec *httptest.ResponseRecorder) rejectionResponse {
	t.Helper()
	var body rejectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode rejection body: %v", err)
	}
	return body
}

func TestAuthenticate_ValidToken(t *testing.T) {
	auth := &stubAuthenticator{principal: &domain.Principal{UserID: "u1", Email: "a@b.com", Role: domain.RoleUser}}
	mw := Authenticate(auth, zerolog.Nop())

	var seen *domain.Principal
	rec := doRequest(t, mw, func(c echo.Context) error {
		seen = PrincipalFrom(c)
		return c.String(http.StatusOK, "ok")
	}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer token-123")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if auth.gotToken != "token-123" {
		t.Fatalf("resolver saw token %q", auth.gotToken)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Fatalf("principal not attached: %+v", seen)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
		err    error
		status int
		code   string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, CodeInvalidToken},
		{"wrong scheme", "Basic dXNlcjpwdw==", nil, http.StatusUnauthorized, CodeInvalidToken},
		{"empty token", "Bearer ", nil, http.StatusUnauthorized, CodeInvalidToken},
		{"resolution fails", "Bearer bad", domain.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken},
		{"backend error", "Bearer t", context.DeadlineExceeded, http.StatusInternalServerError, CodeAuthError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := Authenticate(&stubAuthenticator{err: tc.err}, zerolog.Nop())
			rec := doRequest(t, mw, okHandler, func(r *http.Request) {
				if tc.header != "" {
					r.Header.Set("Authorization", tc.header)
				}
			})

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			body := decodeRejection(t, rec)
			if body.Success {
				t.Fatal("rejection reported success=true")
			}
			if body.Code != tc.code {
				t.Fatalf("code = %s, want %s", body.Code, tc.code)
			}
		})
	}
}

func TestAuthenticate_BearerSchemeCaseInsensitive(t *testing.T) {
	auth := &stubAuthenticator{principal: &domain.Principal{UserID: "u1", Role: domain.RoleUser}}
	rec := doRequest(t, Authenticate(auth, zerolog.Nop()), okHandler, func(r *http.Request) {
		r.Header.Set("Authorization", "bearer token-123")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("lowercase scheme rejected: status %d", rec.Code)
	}
}

func TestAuthenticateOptional(t *testing.T) {
	t.Run("guest passes without principal", func(t *testing.T) {
		mw := AuthenticateOptional(&stubAuthenticator{err: domain.ErrInvalidToken}, zerolog.Nop())
		var seen *domain.Principal
		rec := doRequest(t, mw, func(c echo.Context) error {
			seen = PrincipalFrom(c)
			return c.String(http.StatusOK, "ok")
		}, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("guest rejected: status %d", rec.Code)
		}
		if seen != nil {
			t.Fatalf("guest got a principal: %+v", seen)
		}
	})

	t.Run("invalid token still passes as guest", func(t *testing.T) {
		mw := AuthenticateOptional(&stubAuthenticator{err: domain.ErrInvalidToken}, zerolog.Nop())
		rec := doRequest(t, mw, okHandler, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		auth := &stubAuthenticator{principal: &domain.Principal{UserID: "u1", Role: domain.RoleUser}}
		mw := AuthenticateOptional(auth, zerolog.Nop())
		var seen *domain.Principal
		doRequest(t, mw, func(c echo.Context) error {
			seen = PrincipalFrom(c)
			return c.String(http.StatusOK, "ok")
		}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		})
		if seen == nil || seen.UserID != "u1" {
			t.Fatalf("principal not attached: %+v", seen)
		}
	})
}

func TestAuthorize(t *testing.T) {
	withPrincipal := func(p *domain.Principal) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if p != nil {
					c.Set(principalContextKey, p)
				}
				return next(c)
			}
		}
	}

	run := func(t *testing.T, p *domain.Principal, roles ...string) *httptest.ResponseRecorder {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		chain := withPrincipal(p)(Authorize(roles...)(okHandler))
		if err := chain(c); err != nil {
			t.Fatalf("chain: %v", err)
		}
		return rec
	}

	t.Run("no principal", func(t *testing.T) {
		rec := run(t, nil, domain.RoleAdmin)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if body := decodeRejection(t, rec); body.Code != CodeNotAuthenticated {
			t.Fatalf("code = %s, want NOT_AUTHENTICATED", body.Code)
		}
	})

	t.Run("role not allowed", func(t *testing.T) {
		rec := run(t, &domain.Principal{UserID: "u1", Role: domain.RoleUser}, domain.RoleAdmin)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if body := decodeRejection(t, rec); body.Code != CodeForbidden {
			t.Fatalf("code = %s, want FORBIDDEN", body.Code)
		}
	})

	t.Run("role allowed", func(t *testing.T) {
		rec := run(t, &domain.Principal{UserID: "u1", Role: domain.RoleAdmin}, domain.RoleAdmin)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("role list is normalized", func(t *testing.T) {
		rec := run(t, &domain.Principal{UserID: "u1", Role: domain.RoleAdmin}, "admin")
		if rec.Code != http.StatusOK {
			t.Fatalf("lowercase allowed-role value rejected admin: status %d", rec.Code)
		}
	})
}
