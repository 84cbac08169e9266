package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolgodolah/login/internal/lib/smtp"
	"github.com/dolgodolah/login/internal/models"
)

type fakeWriteCloser struct {
	buf    *bytes.Buffer
	closed bool
}

func (w *fakeWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *fakeWriteCloser) Close() error                { w.closed = true; return nil }

type fakeClient struct {
	from    string
	rcpts   []string
	data    *fakeWriteCloser
	quit    bool
	rcptErr error
}

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error {
	if c.rcptErr != nil {
		return c.rcptErr
	}
	c.rcpts = append(c.rcpts, to)
	return nil
}
func (c *fakeClient) Data() (io.WriteCloser, error) { return c.data, nil }
func (c *fakeClient) Quit() error                   { c.quit = true; return nil }
func (c *fakeClient) Close() error                  { return nil }

type fakeTransport struct {
	client     *fakeClient
	connectErr error
}

func (t *fakeTransport) Connect() (smtp.Client, error) {
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	return t.client, nil
}

func (t *fakeTransport) GetSMTPUser() string { return "dolgodolah@gmail.com" }

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func TestSendVerificationMail(t *testing.T) {
	client := &fakeClient{data: &fakeWriteCloser{buf: &bytes.Buffer{}}}
	svc := NewSenderService(slog.New(discardHandler{}), &fakeTransport{client: client})

	body, err := json.Marshal(models.VerificationMessage{
		Email:      "a@x.com",
		Name:       "Alice",
		ConfirmURL: "http://localhost:8080/confirm?email=a%40x.com&key=Key12345",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendVerificationMail(body))

	assert.Equal(t, "dolgodolah@gmail.com", client.from)
	assert.Equal(t, []string{"a@x.com"}, client.rcpts)
	assert.True(t, client.quit)
	assert.True(t, client.data.closed)

	mail := client.data.buf.String()
	assert.Contains(t, mail, "To: a@x.com")
	assert.Contains(t, mail, "Content-Type: text/html")
	assert.Contains(t, mail, "Alice")
	assert.Contains(t, mail, "http://localhost:8080/confirm?email=a%40x.com&key=Key12345")
}

func TestSendVerificationMail_BadPayload(t *testing.T) {
	svc := NewSenderService(slog.New(discardHandler{}), &fakeTransport{})

	err := svc.SendVerificationMail([]byte("{not json"))
	assert.Error(t, err)
}

func TestSendVerificationMail_ConnectError(t *testing.T) {
	svc := NewSenderService(slog.New(discardHandler{}), &fakeTransport{connectErr: errors.New("dial failed")})

	body, err := json.Marshal(models.VerificationMessage{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)

	assert.Error(t, svc.SendVerificationMail(body))
}

func TestSendVerificationMail_RcptError(t *testing.T) {
	client := &fakeClient{
		data:    &fakeWriteCloser{buf: &bytes.Buffer{}},
		rcptErr: errors.New("mailbox unavailable"),
	}
	svc := NewSenderService(slog.New(discardHandler{}), &fakeTransport{client: client})

	body, err := json.Marshal(models.VerificationMessage{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)

	assert.Error(t, svc.SendVerificationMail(body))
}
