package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dajohi/goemail"
	"github.com/dmitrijs2005/yamdb/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	sent []*goemail.Message
	err  error
}

func (f *fakeTransport) Send(msg *goemail.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestSMTPSender_SendCode(t *testing.T) {
	tr := &fakeTransport{}
	s := &SMTPSender{smtp: tr, mailName: "YaMDB", mailAddress: "noreply@yamdb.test"}

	require.NoError(t, s.SendCode(context.Background(), "alice@example.com", "ABC123"))
	assert.Len(t, tr.sent, 1)
}

func TestSMTPSender_SendCodeError(t *testing.T) {
	tr := &fakeTransport{err: errors.New("smtp down")}
	s := &SMTPSender{smtp: tr, mailAddress: "noreply@yamdb.test"}

	err := s.SendCode(context.Background(), "alice@example.com", "ABC123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alice@example.com")
	assert.Contains(t, err.Error(), "smtp down")
}

func TestNew_DisabledFallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	s, err := New(Config{Host: "smtp.example.com"}, l)
	require.NoError(t, err)

	ls, ok := s.(*LogSender)
	require.True(t, ok, "expected *LogSender, got %T", s)

	require.NoError(t, ls.SendCode(context.Background(), "bob@example.com", "XYZ"))
	out := buf.String()
	assert.True(t, strings.Contains(out, "address=bob@example.com"), out)
	assert.True(t, strings.Contains(out, "code=XYZ"), out)
}

func TestNew_BadFromAddress(t *testing.T) {
	_, err := New(Config{
		Host:        "smtp.example.com:465",
		User:        "u",
		Password:    "p",
		FromAddress: "not an address",
	}, logging.Discard())
	require.Error(t, err)
}
