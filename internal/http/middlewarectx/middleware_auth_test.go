package middlewarectx_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dolgodolah/login/internal/http/middlewarectx"
	"github.com/dolgodolah/login/internal/models"
)

// Mock for TokenValidator
type TokenValidatorMock struct {
	mock.Mock
}

func (m *TokenValidatorMock) ValidateToken(token string) (*models.Principal, error) {
	args := m.Called(token)
	principal, _ := args.Get(0).(*models.Principal)
	return principal, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		authHeader     string
		mockPrincipal  *models.Principal
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Token abc",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer bad-token",
			mockErr:        errors.New("invalid token"),
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer good-token",
			mockPrincipal:  &models.Principal{UID: "uid-1", Email: "a@x.com", Role: models.RoleMember},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validatorMock := new(TokenValidatorMock)
			if tt.mockPrincipal != nil || tt.mockErr != nil {
				validatorMock.On("ValidateToken", mock.Anything).Return(tt.mockPrincipal, tt.mockErr)
			}

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				principal, ok := middlewarectx.PrincipalFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "uid-1", principal.UID)
				assert.Equal(t, models.RoleMember, principal.Role)
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.JWTMiddleware(validatorMock, logger)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			mw.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestRequireMember(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		principal      *models.Principal
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "no principal in context",
			principal:      nil,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "guest is forbidden",
			principal:      &models.Principal{UID: "uid-1", Role: models.RoleGuest},
			wantStatusCode: http.StatusForbidden,
			wantCalled:     false,
		},
		{
			name:           "member is allowed",
			principal:      &models.Principal{UID: "uid-1", Role: models.RoleMember},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "admin is allowed",
			principal:      &models.Principal{UID: "uid-1", Role: models.RoleAdmin},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.RequireMember(logger)(nextHandler)

			req := httptest.NewRequest(http.MethodPost, "/order", nil)
			if tt.principal != nil {
				ctx := middlewarectx.ContextWithPrincipal(req.Context(), tt.principal)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			mw.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}
