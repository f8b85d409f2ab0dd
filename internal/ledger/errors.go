package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MinimumBalance gates every outgoing operation (withdraw and transfer).
var MinimumBalance = decimal.NewFromInt(1500)

// Sentinel errors for engine operations. None are retried automatically;
// recovery is always user-initiated.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrBelowMinimumBalance = errors.New("below minimum balance")
	ErrSelfTransfer        = errors.New("self transfer")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRecipientNotFound   = errors.New("recipient not found")
)

var userMessages = map[error]string{
	ErrNotAuthenticated:    "Not logged in",
	ErrBelowMinimumBalance: "Minimum balance of 1,500 USDT required to enable transfers.",
	ErrSelfTransfer:        "Cannot transfer to yourself",
	ErrInvalidAmount:       "Invalid amount",
	ErrInsufficientBalance: "Insufficient balance",
	ErrRecipientNotFound:   "User not found",
}

// UserMessage maps an engine error to its user-facing message. Unknown
// errors get a generic notice so internal detail never leaks upward.
func UserMessage(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Transaction failed"
}
