package resend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolgodolah/login/internal/http/handlers/verification/resend"
	accountservice "github.com/dolgodolah/login/internal/services/account"
	"github.com/dolgodolah/login/internal/storage"
)

type mockService struct {
	IssueFunc func(ctx context.Context, email string) (string, error)
}

func (m *mockService) IssueVerificationKey(ctx context.Context, email string) (string, error) {
	return m.IssueFunc(ctx, email)
}

func makeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doResend(t *testing.T, svc resend.Service, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verification/resend", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	resend.New(makeLogger(), svc).ServeHTTP(w, req)
	return w
}

func TestResendHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockService{
			IssueFunc: func(_ context.Context, email string) (string, error) {
				require.Equal(t, "a@x.com", email)
				return "Ab3dEf7h", nil
			},
		}

		w := doResend(t, svc, resend.Request{Email: "a@x.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "confirmation email is on the way")
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &mockService{
			IssueFunc: func(_ context.Context, _ string) (string, error) {
				return "", storage.ErrUserNotFound
			},
		}

		w := doResend(t, svc, resend.Request{Email: "a@x.com"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "user not found")
	})

	t.Run("already verified", func(t *testing.T) {
		svc := &mockService{
			IssueFunc: func(_ context.Context, _ string) (string, error) {
				return "", accountservice.ErrAlreadyVerified
			},
		}

		w := doResend(t, svc, resend.Request{Email: "a@x.com"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already verified")
	})

	t.Run("mail queue unavailable", func(t *testing.T) {
		svc := &mockService{
			IssueFunc: func(_ context.Context, _ string) (string, error) {
				return "", accountservice.ErrMailNotSent
			},
		}

		w := doResend(t, svc, resend.Request{Email: "a@x.com"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "failed to send confirmation email")
	})

	t.Run("validation error", func(t *testing.T) {
		svc := &mockService{
			IssueFunc: func(_ context.Context, _ string) (string, error) {
				t.Fatal("IssueVerificationKey should not be called")
				return "", nil
			},
		}

		w := doResend(t, svc, resend.Request{Email: "not-an-email"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "field Email must be a valid email address")
	})
}
