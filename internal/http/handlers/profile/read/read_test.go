package read_test

import (
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

	"github.com/dolgodolah/login/internal/http/handlers/profile/read"
	"github.com/dolgodolah/login/internal/http/middlewarectx"
	"github.com/dolgodolah/login/internal/http/response"
	"github.com/dolgodolah/login/internal/models"
	"github.com/dolgodolah/login/internal/storage"
)

type mockService struct {
	GetProfileFunc func(ctx context.Context, userUID string) (*models.User, error)
}

func (m *mockService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	return m.GetProfileFunc(ctx, userUID)
}

func makeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doRead(t *testing.T, svc read.Service, principal *models.Principal) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if principal != nil {
		req = req.WithContext(middlewarectx.ContextWithPrincipal(req.Context(), principal))
	}
	w := httptest.NewRecorder()
	read.New(makeLogger(), svc).ServeHTTP(w, req)
	return w
}

func TestReadProfileHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockService{
			GetProfileFunc: func(_ context.Context, userUID string) (*models.User, error) {
				require.Equal(t, "uid-1", userUID)
				return &models.User{
					UID:   "uid-1",
					Email: "a@x.com",
					Name:  "Alice",
					Role:  models.RoleMember,
				}, nil
			},
		}

		w := doRead(t, svc, &models.Principal{UID: "uid-1", Email: "a@x.com", Role: models.RoleMember})

		require.Equal(t, http.StatusOK, w.Code)
		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "a@x.com", data["email"])
		assert.Equal(t, "Alice", data["name"])
		assert.Equal(t, models.RoleMember, data["role"])
	})

	t.Run("no principal in context", func(t *testing.T) {
		svc := &mockService{
			GetProfileFunc: func(_ context.Context, _ string) (*models.User, error) {
				t.Fatal("GetProfile should not be called")
				return nil, nil
			},
		}

		w := doRead(t, svc, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile vanished", func(t *testing.T) {
		svc := &mockService{
			GetProfileFunc: func(_ context.Context, _ string) (*models.User, error) {
				return nil, storage.ErrUserNotFound
			},
		}

		w := doRead(t, svc, &models.Principal{UID: "uid-1", Email: "a@x.com", Role: models.RoleMember})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &mockService{
			GetProfileFunc: func(_ context.Context, _ string) (*models.User, error) {
				return nil, errors.New("db down")
			},
		}

		w := doRead(t, svc, &models.Principal{UID: "uid-1", Email: "a@x.com", Role: models.RoleMember})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
