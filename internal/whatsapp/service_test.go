package whatsapp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"

	"elo-welcoming/internal/models"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 98888-7777", "5511988887777"},
		{"11 3333-4444", "551133334444"},
		{"011 98888-7777", "5511988887777"},
		{"+55 11 98888-7777", "5511988887777"},
		{"5511988887777", "5511988887777"},
		{"+1 415 555 0100", "14155550100"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhoneNumber(tt.in))
		})
	}
}

func TestFormatPendingList(t *testing.T) {
	age := 30
	msg := FormatPendingList(
		models.Welcomer{Name: "maria", Alias: "Maria"},
		[]models.Visitor{
			{Name: "Ana Silva", Age: &age, Phone: "11999990000"},
			{Name: "Bruno Costa"},
		},
	)

	assert.Contains(t, msg, "Olá Maria,")
	assert.Contains(t, msg, "1. *Ana Silva*, 30 anos - 11999990000\n")
	assert.Contains(t, msg, "2. *Bruno Costa*\n")
	assert.True(t, strings.HasPrefix(msg, "🙏"))
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "oi", MessageText(&waE2E.Message{Conversation: proto.String(" oi ")}))
	assert.Equal(t, "Ana não atendeu", MessageText(&waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("Ana não atendeu")},
	}))
	assert.Equal(t, "", MessageText(&waE2E.Message{}))
}
