package register_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolgodolah/login/internal/http/handlers/auth/register"
	"github.com/dolgodolah/login/internal/http/response"
	accountservice "github.com/dolgodolah/login/internal/services/account"
)

type mockService struct {
	RegisterFunc func(ctx context.Context, email, rawPassword, name string) (string, error)
}

func (m *mockService) Register(ctx context.Context, email, rawPassword, name string) (string, error) {
	return m.RegisterFunc(ctx, email, rawPassword, name)
}

func makeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		body, _ := json.Marshal(register.Request{
			Email:    "a@x.com",
			Password: "password123",
			Name:     "Alice",
		})

		svc := &mockService{
			RegisterFunc: func(_ context.Context, email, rawPassword, name string) (string, error) {
				require.Equal(t, "a@x.com", email)
				require.Equal(t, "password123", rawPassword)
				require.Equal(t, "Alice", name)
				return "uid-1", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		w := httptest.NewRecorder()

		register.New(makeLogger(), svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusOK, resp.Status)
		assert.Equal(t, "uid-1", resp.Data.(map[string]any)["uid"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := &mockService{
			RegisterFunc: func(_ context.Context, _, _, _ string) (string, error) {
				t.Fatal("Register should not be called")
				return "", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader([]byte("{bad json")))
		w := httptest.NewRecorder()

		register.New(makeLogger(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid request body")
	})

	t.Run("validation error", func(t *testing.T) {
		body, _ := json.Marshal(register.Request{
			Email:    "not-an-email",
			Password: "123", // слишком короткий пароль
			Name:     "Alice",
		})
		svc := &mockService{
			RegisterFunc: func(_ context.Context, _, _, _ string) (string, error) {
				t.Fatal("Register should not be called")
				return "", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		w := httptest.NewRecorder()

		register.New(makeLogger(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "field Email must be a valid email address")
	})

	t.Run("duplicate email", func(t *testing.T) {
		body, _ := json.Marshal(register.Request{
			Email:    "a@x.com",
			Password: "password123",
			Name:     "Alice",
		})
		svc := &mockService{
			RegisterFunc: func(_ context.Context, _, _, _ string) (string, error) {
				return "", accountservice.ErrEmailTaken
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		w := httptest.NewRecorder()

		register.New(makeLogger(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email is already registered")
	})

	t.Run("service error", func(t *testing.T) {
		body, _ := json.Marshal(register.Request{
			Email:    "a@x.com",
			Password: "password123",
			Name:     "Alice",
		})
		svc := &mockService{
			RegisterFunc: func(_ context.Context, _, _, _ string) (string, error) {
				return "", errors.New("db error")
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
		w := httptest.NewRecorder()

		register.New(makeLogger(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "failed to register user")
	})
}
