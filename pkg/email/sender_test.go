package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
)

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("ops@fleetdesk.test", "driver@example.com", "Order assigned", "Order 1001 is yours."))

	assert.Contains(t, msg, "From: ops@fleetdesk.test\r\n")
	assert.Contains(t, msg, "To: driver@example.com\r\n")
	assert.Contains(t, msg, "Subject: Order assigned\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nOrder 1001 is yours."))
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	msg := string(BuildMessage("ops@fleetdesk.test", "driver@example.com",
		"hello\r\nBcc: everyone@example.com", "body"))

	// the injected header collapses into the subject value
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.Contains(t, msg, "Subject: helloBcc: everyone@example.com\r\n")
}

func TestNewSMTPSenderValidation(t *testing.T) {
	_, err := NewSMTPSender(config.SMTPConfig{Port: 587, DefaultFrom: "ops@fleetdesk.test"}, nil)
	require.Error(t, err)

	_, err = NewSMTPSender(config.SMTPConfig{Host: "mail.fleetdesk.test", Port: 587}, nil)
	require.Error(t, err)

	sender, err := NewSMTPSender(config.SMTPConfig{
		Host:        "mail.fleetdesk.test",
		Port:        587,
		DefaultFrom: "ops@fleetdesk.test",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mail.fleetdesk.test:587", sender.addr)
	assert.Nil(t, sender.auth)
}
