package booking

import (
	"context"

	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// PaymentProvider captures the deposit for a booking before it is finalized.
// The portal ships without a gateway integration, so the fake provider below
// stands in; a real provider slots in here without touching the workflow.
type PaymentProvider interface {
	Charge(ctx context.Context, sessionID string, amountCents int) error
}

// FakePaymentProvider approves every charge. Demo stand-in.
type FakePaymentProvider struct {
	logger *logging.Logger
}

func NewFakePaymentProvider(logger *logging.Logger) *FakePaymentProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakePaymentProvider{logger: logger}
}

func (p *FakePaymentProvider) Charge(_ context.Context, sessionID string, amountCents int) error {
	logger := p.logger
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("fake payment captured", "session_id", sessionID, "amount_cents", amountCents)
	return nil
}

var _ PaymentProvider = (*FakePaymentProvider)(nil)
