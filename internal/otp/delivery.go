package otp

import (
	"context"
	"fmt"

	"github.com/Rup-source226/maa-care-ai/internal/notify"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Delivery carries an issued code to its contact out-of-band. Production
// deployments plug in a real channel here (email today, SMS when a gateway
// lands); LogDelivery covers development.
type Delivery interface {
	Deliver(ctx context.Context, contact, code string) error
}

// LogDelivery writes the code to the application log. Demo/development only.
type LogDelivery struct {
	logger *logging.Logger
}

func NewLogDelivery(logger *logging.Logger) *LogDelivery {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogDelivery{logger: logger}
}

func (d *LogDelivery) Deliver(_ context.Context, contact, code string) error {
	d.logger.Info("verification code issued", "contact", contact, "code", code)
	return nil
}

var _ Delivery = (*LogDelivery)(nil)

// EmailDelivery sends the code through an email sender. The contact
// identifier is used as the address.
type EmailDelivery struct {
	sender notify.EmailSender
}

func NewEmailDelivery(sender notify.EmailSender) *EmailDelivery {
	return &EmailDelivery{sender: sender}
}

func (d *EmailDelivery) Deliver(ctx context.Context, contact, code string) error {
	if d.sender == nil {
		return fmt.Errorf("otp: no email sender configured")
	}
	return d.sender.Send(ctx, notify.EmailMessage{
		To:      contact,
		Subject: "Your Maa Care verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires shortly; do not share it.", code),
	})
}

var _ Delivery = (*EmailDelivery)(nil)
