package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"elo-welcoming/internal/config"
)

func TestNotifierChoice(t *testing.T) {
	assert.Equal(t, config.NotifierEmail, notifierChoice(config.NotifierLog, "Email"))
	assert.Equal(t, config.NotifierWhatsApp, notifierChoice(config.NotifierEmail, " WHATSAPP "))
	assert.Equal(t, config.NotifierLog, notifierChoice(config.NotifierLog, ""))
}
