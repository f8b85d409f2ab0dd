package flows

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput rejects bad user input before any step transition.
var ErrInvalidInput = errors.New("invalid input")

// Wallet is the single callback surface a flow drives once its guards
// have passed. Implemented by the ledger engine.
type Wallet interface {
	ReceiveFunds(ctx context.Context, amount decimal.Decimal) error
	SendFunds(ctx context.Context, address string, amount, fee decimal.Decimal) error
	TransferFunds(ctx context.Context, recipientIdentifier string, amount decimal.Decimal) error
}

// wait pauses for the artificial flow delay, honoring cancellation.
// Closing a flow mid-wait discards in-flight state without rollback: the
// wallet is only invoked after every guard has passed.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
