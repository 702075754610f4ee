package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
	"elo-welcoming/internal/whatsapp"
)

type sentMessage struct {
	phone, text string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) SendMessage(_ context.Context, phone, text string) error {
	f.sent = append(f.sent, sentMessage{phone, text})
	return nil
}

type fakeDirectory map[string]models.Welcomer

func (f fakeDirectory) FindWelcomerByPhone(_ context.Context, digits string) (models.Welcomer, error) {
	if w, ok := f[digits]; ok {
		return w, nil
	}
	return models.Welcomer{}, storage.ErrNotFound
}

type fakeExtractor struct {
	entries []models.ReplyEntry
	err     error
}

func (f *fakeExtractor) RepliesFromText(context.Context, string) ([]models.ReplyEntry, error) {
	return f.entries, f.err
}

type fakeApplier struct {
	welcomerID int64
	entries    []models.ReplyEntry
	tally      reconcile.ReplyTally
}

func (f *fakeApplier) RepliesFrom(_ context.Context, welcomerID int64, entries []models.ReplyEntry) (reconcile.ReplyTally, error) {
	f.welcomerID, f.entries = welcomerID, entries
	return f.tally, nil
}

const mariaPhone = "5511988887777"

func newHandler(ext *fakeExtractor, app *fakeApplier) (*ReplyHandler, *fakeSender) {
	sender := &fakeSender{}
	dir := fakeDirectory{mariaPhone: {ID: 7, Name: "maria"}}
	return NewReplyHandler(sender, dir, ext, app, zerolog.Nop()), sender
}

func TestHandleMessage_AppliesScopedReply(t *testing.T) {
	entries := []models.ReplyEntry{{VisitorName: "Ana", Status: models.OutcomeInterested}}
	app := &fakeApplier{tally: reconcile.ReplyTally{Updated: 1}}
	h, sender := newHandler(&fakeExtractor{entries: entries}, app)

	err := h.HandleMessage(context.Background(), whatsapp.Inbound{Phone: mariaPhone, Text: "Ana atendeu e tem interesse"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), app.welcomerID)
	assert.Equal(t, entries, app.entries)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, mariaPhone, sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].text, "1 visitante")
}

func TestHandleMessage_UnknownNumberIgnored(t *testing.T) {
	app := &fakeApplier{}
	h, sender := newHandler(&fakeExtractor{}, app)

	require.NoError(t, h.HandleMessage(context.Background(), whatsapp.Inbound{Phone: "5521900000000", Text: "oi"}))
	assert.Empty(t, sender.sent)
	assert.Nil(t, app.entries)
}

func TestHandleMessage_UnreadableReply(t *testing.T) {
	app := &fakeApplier{}
	h, sender := newHandler(&fakeExtractor{err: errors.New("model output is not valid")}, app)

	require.NoError(t, h.HandleMessage(context.Background(), whatsapp.Inbound{Phone: mariaPhone, Text: "???"}))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, unreadableReply, sender.sent[0].text)
	assert.Nil(t, app.entries)
}

func TestConfirmation(t *testing.T) {
	assert.Contains(t, Confirmation(reconcile.ReplyTally{}), "não encontrei")
	assert.Contains(t, Confirmation(reconcile.ReplyTally{Updated: 2, Ambiguous: 1}), "3 visitantes")

	msg := Confirmation(reconcile.ReplyTally{Updated: 1, NotFound: 2, Malformed: 1})
	assert.Contains(t, msg, "2 nome(s)")
	assert.Contains(t, msg, "1 item(ns)")
}
