/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package flows

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"trustio-wallet-go/internal/ledger"
	"trustio-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SendIntent selects which ledger operation the flow confirms.
type SendIntent string

const (
	IntentWithdraw SendIntent = "withdraw"
	IntentTransfer SendIntent = "transfer"
)

// Secure-Send flow steps.
type SendStep string

const (
	SendStepInput      SendStep = "input"
	SendStepScanning   SendStep = "scanning"
	SendStepSecurity   SendStep = "security"
	SendStepProcessing SendStep = "processing"
	SendStepSuccess    SendStep = "success"
)

// Sentinel errors for the secure-send flow.
var (
	// ErrRestricted means entry was refused outright: the balance is
	// below the outgoing minimum and the caller should show the
	// restriction notice instead of the input step.
	ErrRestricted       = errors.New("minimum balance required for outgoing transactions")
	ErrInvalidSecretKey = errors.New("invalid secret key")
	// ErrProcessingFailed is the generic notice surfaced to the user;
	// the specific engine failure stays available via LastError.
	ErrProcessingFailed = errors.New("transaction could not be processed")
)

const (
	msgInvalidSecretKey = "Invalid Secret Key. Please try again."
	msgProcessingFailed = "Insufficient funds or invalid transaction"
)

// SecureSendFlow walks input -> scanning? -> security -> processing ->
// success for both the withdraw and transfer intents. The ledger call
// happens only after the secret-key gate passes.
type SecureSendFlow struct {
	cfg     models.FlowConfig
	wallet  Wallet
	account *models.Account
	intent  SendIntent

	step        SendStep
	destination string
	amount      decimal.Decimal
	notice      string
	lastErr     error
}

// NewSecureSendFlow opens the flow for the acting account. Entry is
// gated: a balance below the outgoing minimum returns ErrRestricted and
// no flow instance at all.
func NewSecureSendFlow(wallet Wallet, account *models.Account, intent SendIntent, cfg models.FlowConfig) (*SecureSendFlow, error) {
	if account == nil {
		return nil, ledger.ErrNotAuthenticated
	}
	if account.TotalAssets.LessThan(ledger.MinimumBalance) {
		zap.L().Warn("Secure-send entry refused below minimum balance",
			zap.String("username", account.Username),
			zap.String("intent", string(intent)),
			zap.String("balance", account.TotalAssets.String()))
		return nil, ErrRestricted
	}
	if intent != IntentWithdraw && intent != IntentTransfer {
		return nil, fmt.Errorf("%w: unknown intent %q", ErrInvalidInput, intent)
	}

	return &SecureSendFlow{
		cfg:     cfg,
		wallet:  wallet,
		account: account.Clone(),
		intent:  intent,
		step:    SendStepInput,
	}, nil
}

func (f *SecureSendFlow) Step() SendStep     { return f.step }
func (f *SecureSendFlow) Intent() SendIntent { return f.intent }

// Notice returns the last user-facing notice.
func (f *SecureSendFlow) Notice() string { return f.notice }

// LastError preserves the specific engine failure that Confirm reported
// generically.
func (f *SecureSendFlow) LastError() error { return f.lastErr }

// SubmitDetails collects the destination (address, or username/email for
// the transfer intent) and amount, then advances to the security step.
func (f *SecureSendFlow) SubmitDetails(destination string, amount decimal.Decimal) error {
	if f.step != SendStepInput {
		return ErrWrongStep
	}
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: destination required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	f.destination = destination
	f.amount = amount
	f.step = SendStepSecurity
	return nil
}

// StartScan detours to the scanner. The scanner only ever writes into the
// destination field and returns to input.
func (f *SecureSendFlow) StartScan() error {
	if f.step != SendStepInput {
		return ErrWrongStep
	}
	f.step = SendStepScanning
	return nil
}

// CaptureScan accepts a decoded QR payload as the destination.
func (f *SecureSendFlow) CaptureScan(code string) error {
	if f.step != SendStepScanning {
		return ErrWrongStep
	}
	f.destination = code
	f.step = SendStepInput
	return nil
}

// CancelScan abandons the scanner without touching the destination.
func (f *SecureSendFlow) CancelScan() error {
	if f.step != SendStepScanning {
		return ErrWrongStep
	}
	f.step = SendStepInput
	return nil
}

// Confirm checks the secret key and, on match, runs the ledger call
// behind the artificial processing delay. A mismatch stays in security
// with no retry limit. An engine failure returns the flow to input with a
// generic notice; the specific reason is kept on LastError.
func (f *SecureSendFlow) Confirm(ctx context.Context, secretKey string) error {
	if f.step != SendStepSecurity {
		return ErrWrongStep
	}

	if subtle.ConstantTimeCompare([]byte(secretKey), []byte(f.account.SecretKey)) != 1 {
		f.notice = msgInvalidSecretKey
		return ErrInvalidSecretKey
	}

	f.notice = ""
	f.step = SendStepProcessing
	if err := wait(ctx, f.cfg.ProcessingDelay); err != nil {
		return err
	}

	var err error
	switch f.intent {
	case IntentWithdraw:
		err = f.wallet.SendFunds(ctx, f.destination, f.amount, f.cfg.WithdrawFee)
	case IntentTransfer:
		err = f.wallet.TransferFunds(ctx, f.destination, f.amount)
	}
	if err != nil {
		f.step = SendStepInput
		f.lastErr = err
		f.notice = msgProcessingFailed
		zap.L().Warn("Secure-send processing failed",
			zap.String("intent", string(f.intent)),
			zap.Error(err))
		return ErrProcessingFailed
	}

	f.step = SendStepSuccess
	zap.L().Info("Secure-send completed",
		zap.String("intent", string(f.intent)),
		zap.String("amount", f.amount.String()))
	return nil
}
