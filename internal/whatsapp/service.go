package whatsapp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"elo-welcoming/internal/models"
)

// Inbound is a text message received from a contact
type Inbound struct {
	ID    string
	Phone string
	Text  string
}

// MessageHandler is a callback for incoming text messages
type MessageHandler func(ctx context.Context, in Inbound) error

type Config struct {
	DataDir string
}

type Service struct {
	client         *whatsmeow.Client
	cfg            *Config
	log            zerolog.Logger
	messageHandler MessageHandler
}

// NewService creates a new WhatsApp service. The device session lives in
// whatsmeow.db under the data directory.
func NewService(ctx context.Context, cfg *Config, log zerolog.Logger) (*Service, error) {
	logger := log.With().Str("component", "WhatsApp").Logger()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsmeow.db"))
	container, err := sqlstore.New(ctx, "sqlite3", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    logger,
	}

	client.AddEventHandler(func(evt interface{}) {
		service.eventHandler(evt)
	})

	return service, nil
}

// NormalizePhoneNumber reduces a phone number to digits in international
// format. Brazilian numbers without country code (DDD + number, optionally
// with a trunk 0) get the 55 prefix.
func NormalizePhoneNumber(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "0") && (len(digits) == 11 || len(digits) == 12) {
		digits = digits[1:]
	}
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}
	return digits
}

// Connect connects to WhatsApp, showing a device-link QR code on first use
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, _ := s.client.GetQRChannel(ctx)
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Printf("QR Code: %s\n", evt.Code)
			fmt.Println("Please scan this QR code with WhatsApp to connect.")
			continue
		}
		fmt.Println("\n" + q.ToSmallString(false))
		fmt.Println("📱 Please scan the QR code above with WhatsApp:")
		fmt.Println("   1. Open WhatsApp on your phone")
		fmt.Println("   2. Go to Settings > Linked Devices")
		fmt.Println("   3. Tap 'Link a Device'")
		fmt.Println("   4. Scan the QR code shown above")
		fmt.Println()
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// Notify sends a welcomer their pending visitors. It implements
// reconcile.Notifier.
func (s *Service) Notify(ctx context.Context, welcomer models.Welcomer, visitors []models.Visitor) error {
	if welcomer.Phone == "" {
		return fmt.Errorf("welcomer %s has no phone number", welcomer.Name)
	}
	return s.SendMessage(ctx, welcomer.Phone, FormatPendingList(welcomer, visitors))
}

// SendMessage sends a simple text message
func (s *Service) SendMessage(ctx context.Context, phoneNumber, message string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber)

	jid, err := s.resolve(ctx, phoneNumber)
	if err != nil {
		return err
	}

	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Attempting to send message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unknown server") || strings.Contains(err.Error(), "can't send message") {
			return fmt.Errorf("failed to send message to %s (JID: %s): %w. The recipient may need to be in your contacts or message you first", phoneNumber, jid.String(), err)
		}
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info().Str("id", string(sent.ID)).Str("phone", phoneNumber).Msg("Message sent")
	return nil
}

// resolve verifies the number is on WhatsApp and returns its JID
func (s *Service) resolve(ctx context.Context, phoneNumber string) (types.JID, error) {
	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return types.JID{}, fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return types.JID{}, fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}
	s.log.Debug().Str("phone", phoneNumber).Str("jid", resp[0].JID.String()).Msg("Number verified on WhatsApp")
	return resp[0].JID, nil
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	if evt == nil {
		return
	}
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}

// handleMessage processes incoming messages
func (s *Service) handleMessage(msg *events.Message) {
	if msg.Info.IsFromMe || msg.Info.IsGroup || msg.Message == nil {
		return
	}

	text := MessageText(msg.Message)
	if text == "" {
		return
	}

	ctx := context.Background()
	in := Inbound{
		ID:    msg.Info.ID,
		Phone: s.senderPhone(ctx, msg.Info.Sender),
		Text:  text,
	}

	if s.messageHandler == nil {
		s.log.Info().Str("sender", in.Phone).Str("message", text).Msg("Received message")
		return
	}
	if err := s.messageHandler(ctx, in); err != nil {
		s.log.Error().Err(err).Str("sender", in.Phone).Msg("Error handling message")
	}
}

// senderPhone maps a sender JID to a phone number, resolving hidden-user
// (LID) senders through the device store.
func (s *Service) senderPhone(ctx context.Context, sender types.JID) string {
	if sender.Server == types.HiddenUserServer && s.client.Store.LIDs != nil {
		if pn, err := s.client.Store.LIDs.GetPNForLID(ctx, sender); err == nil && !pn.IsEmpty() {
			return pn.User
		}
		s.log.Debug().Str("lid", sender.String()).Msg("No phone number known for sender")
	}
	return sender.User
}

// MessageText returns the plain text of a message, if any
func MessageText(m *waE2E.Message) string {
	if t := m.GetConversation(); t != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(m.GetExtendedTextMessage().GetText())
}

// SetMessageHandler sets a custom handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}
