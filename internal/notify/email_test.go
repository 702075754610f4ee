package notify

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elo-welcoming/internal/models"
)

func intp(n int) *int { return &n }

var visitors = []models.Visitor{
	{Name: "Ana Silva", Age: intp(30), Phone: "11999990000", DecisionDate: "2024-03-10"},
	{Name: "Bruno <Costa>", DecisionDate: "2024-03-10"},
}

func TestRenderBody(t *testing.T) {
	body, err := RenderBody(models.Welcomer{Name: "maria", Alias: "Maria"}, visitors)
	require.NoError(t, err)

	assert.Contains(t, body, "Olá Maria,")
	assert.Contains(t, body, "<td>Ana Silva</td><td>30</td><td>11999990000</td>")
	assert.Contains(t, body, "Bruno &lt;Costa&gt;")
	assert.Equal(t, 3, strings.Count(body, "<tr>"))
}

func TestEmailNotifier_Notify(t *testing.T) {
	var raw bytes.Buffer
	n := NewEmailNotifier(SMTPConfig{Host: "smtp.example.com", Port: 465, From: "elo@example.com"}, zerolog.Nop())
	n.send = func(_ context.Context, msg *mail.Msg) error {
		_, err := msg.WriteTo(&raw)
		return err
	}

	err := n.Notify(context.Background(), models.Welcomer{Name: "maria", Email: "maria@example.com"}, visitors)
	require.NoError(t, err)

	msg := raw.String()
	assert.Contains(t, msg, "elo@example.com")
	assert.Contains(t, msg, "maria@example.com")
	assert.Regexp(t, `(?i)Subject: =\?utf-8\?q\?`, msg)
	assert.Contains(t, msg, "text/html")
	assert.Contains(t, msg, "maria,")
}

func TestEmailNotifier_Errors(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{Host: "smtp.example.com", Port: 465, From: "elo@example.com"}, zerolog.Nop())
	n.send = func(context.Context, *mail.Msg) error {
		return errors.New("535 authentication failed")
	}

	err := n.Notify(context.Background(), models.Welcomer{Name: "maria"}, visitors)
	require.Error(t, err)

	err = n.Notify(context.Background(), models.Welcomer{Name: "maria", Email: "maria@example.com"}, visitors)
	require.ErrorContains(t, err, "535")
}

func TestEmailNotifier_StalledServerHonorsContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	n := NewEmailNotifier(SMTPConfig{
		Host: "127.0.0.1", Port: port, From: "elo@example.com", Timeout: time.Second,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.Notify(ctx, models.Welcomer{Name: "maria", Email: "maria@example.com"}, visitors)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("send did not return after cancellation")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf strings.Builder
	n := NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.Notify(context.Background(), models.Welcomer{Name: "maria"}, visitors))
	assert.Contains(t, buf.String(), "Ana Silva")
	assert.Contains(t, buf.String(), `"component":"DryRun"`)
}
