package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSendGridSenderRequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))
	assert.NotNil(t, NewSendGridSender(SendGridConfig{APIKey: "SG.test"}, nil))
}

func TestNewSESSenderRequiresClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "noreply@maacare.app"}, nil))
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	sender := NewStubEmailSender(nil)
	err := sender.Send(context.Background(), EmailMessage{
		To:      "user@example.com",
		Subject: "Your verification code",
		Body:    "123456",
	})
	assert.NoError(t, err)
}
