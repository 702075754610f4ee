package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
	"elo-welcoming/internal/whatsapp"
)

// Sender delivers a text message to a phone number
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// WelcomerDirectory finds the welcomer behind a phone number
type WelcomerDirectory interface {
	FindWelcomerByPhone(ctx context.Context, digits string) (models.Welcomer, error)
}

// ReplyExtractor structures a free-text reply
type ReplyExtractor interface {
	RepliesFromText(ctx context.Context, text string) ([]models.ReplyEntry, error)
}

// ReplyApplier applies replies scoped to one welcomer's visitors
type ReplyApplier interface {
	RepliesFrom(ctx context.Context, welcomerID int64, entries []models.ReplyEntry) (reconcile.ReplyTally, error)
}

// ReplyHandler turns WhatsApp messages from known welcomers into contact
// outcomes for their own visitors
type ReplyHandler struct {
	sender    Sender
	directory WelcomerDirectory
	extractor ReplyExtractor
	applier   ReplyApplier
	log       zerolog.Logger
}

// NewReplyHandler creates a handler for welcomer replies arriving over WhatsApp
func NewReplyHandler(sender Sender, directory WelcomerDirectory, extractor ReplyExtractor, applier ReplyApplier, log zerolog.Logger) *ReplyHandler {
	return &ReplyHandler{
		sender:    sender,
		directory: directory,
		extractor: extractor,
		applier:   applier,
		log:       log.With().Str("component", "ReplyHandler").Logger(),
	}
}

// HandleMessage processes an incoming message as a welcomer reply.
// Messages from numbers that belong to no welcomer are ignored.
func (h *ReplyHandler) HandleMessage(ctx context.Context, in whatsapp.Inbound) error {
	text := strings.TrimSpace(in.Text)
	if text == "" || in.Phone == "" {
		return nil
	}

	welcomer, err := h.directory.FindWelcomerByPhone(ctx, in.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		h.log.Debug().Str("phone", in.Phone).Msg("Message from unknown number, ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up welcomer: %w", err)
	}

	log := h.log.With().Int64("welcomer_id", welcomer.ID).Str("welcomer", welcomer.Name).Logger()

	entries, err := h.extractor.RepliesFromText(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("Could not structure reply")
		return h.sender.SendMessage(ctx, in.Phone, unreadableReply)
	}
	if len(entries) == 0 {
		log.Debug().Msg("Reply mentions no visitors")
		return nil
	}

	tally, err := h.applier.RepliesFrom(ctx, welcomer.ID, entries)
	if err != nil {
		return fmt.Errorf("failed to apply replies: %w", err)
	}
	log.Info().
		Int("updated", tally.Updated+tally.Ambiguous).
		Int("not_found", tally.NotFound).
		Msg("Reply applied")

	if err := h.sender.SendMessage(ctx, in.Phone, Confirmation(tally)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

const unreadableReply = "Não consegui entender sua resposta. 🙏\n\n" +
	"Por favor, envie o nome de cada visitante e o resultado do contato " +
	"(por exemplo: \"Ana atendeu e tem interesse\")."

// Confirmation renders the message sent back after a reply was applied
func Confirmation(t reconcile.ReplyTally) string {
	updated := t.Updated + t.Ambiguous

	var b strings.Builder
	switch {
	case updated == 0:
		b.WriteString("Recebi sua mensagem, mas não encontrei nenhum visitante pendente de retorno com esses nomes.")
	case updated == 1:
		b.WriteString("✅ Obrigado! Registrei o retorno de 1 visitante.")
	default:
		fmt.Fprintf(&b, "✅ Obrigado! Registrei o retorno de %d visitantes.", updated)
	}
	if updated > 0 && t.NotFound > 0 {
		fmt.Fprintf(&b, "\n\n%d nome(s) não foram encontrados ou já tinham retorno registrado.", t.NotFound)
	}
	if t.Malformed > 0 {
		fmt.Fprintf(&b, "\n\n%d item(ns) ficaram sem resultado claro. Pode detalhar?", t.Malformed)
	}
	return b.String()
}
