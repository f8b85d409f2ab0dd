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
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"trustio-wallet-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit flow steps.
type DepositStep string

const (
	DepositStepInput     DepositStep = "input"
	DepositStepPayment   DepositStep = "payment"
	DepositStepVerifying DepositStep = "verifying"
	DepositStepSuccess   DepositStep = "success"
)

// Sentinel errors for the deposit flow.
var (
	ErrWrongStep          = errors.New("operation not valid in current step")
	ErrMissingTxId        = errors.New("transaction id required")
	ErrVerificationFailed = errors.New("verification failed")
	ErrUnknownNetwork     = errors.New("unknown network")
)

// User-facing notices, matching the wallet app.
const (
	msgMissingTxId  = "Please enter the Transaction Hash/ID."
	msgInvalidTxId  = "Invalid TXID: Hash not found on blockchain. Please ensure you sent funds to the correct address."
	defaultNetwork  = "TRC20"
	defaultDeposit  = 15 * time.Minute
	minTxHashLength = 21
)

var txHashPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Receipt is the synthesized confirmation shown after a verified deposit.
// It is presentational only and is never persisted; reopening the flow
// produces a fresh one.
type Receipt struct {
	Hash      string
	Block     int64
	Fee       string
	Timestamp string
}

// DepositFlow walks input -> payment -> verifying -> success, falling
// back from verifying to payment when verification fails. The ledger is
// only invoked after verification passes.
type DepositFlow struct {
	cfg      models.FlowConfig
	wallet   Wallet
	networks map[string]string

	step     DepositStep
	network  string
	amount   decimal.Decimal
	orderId  string
	deadline time.Time
	logs     []string
	logFn    func(string)
	receipt  *Receipt
	notice   string
}

// NewDepositFlow opens a fresh flow instance in the input step with a new
// order id and payment window.
func NewDepositFlow(wallet Wallet, networks map[string]string, cfg models.FlowConfig) *DepositFlow {
	window := cfg.DepositWindow
	if window <= 0 {
		window = defaultDeposit
	}
	return &DepositFlow{
		cfg:      cfg,
		wallet:   wallet,
		networks: networks,
		step:     DepositStepInput,
		network:  defaultNetwork,
		orderId:  "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8]),
		deadline: time.Now().Add(window),
	}
}

func (f *DepositFlow) Step() DepositStep { return f.step }
func (f *DepositFlow) OrderId() string   { return f.orderId }
func (f *DepositFlow) Network() string   { return f.network }
func (f *DepositFlow) Logs() []string    { return f.logs }

// Notice returns the last user-facing error notice, cleared on success.
func (f *DepositFlow) Notice() string { return f.notice }

// Receipt returns the synthesized confirmation, or nil before success.
func (f *DepositFlow) Receipt() *Receipt { return f.receipt }

// Remaining reports the time left in the advisory payment window.
func (f *DepositFlow) Remaining() time.Duration {
	if r := time.Until(f.deadline); r > 0 {
		return r
	}
	return 0
}

// Expired reports whether the payment window has lapsed. The window is
// advisory: a late verification attempt is still honored.
func (f *DepositFlow) Expired() bool { return f.Remaining() == 0 }

// OnLog registers a callback invoked for every verification log line as
// it is produced, in addition to being collected on the flow.
func (f *DepositFlow) OnLog(fn func(string)) { f.logFn = fn }

// SelectNetwork picks the receiving network while collecting payment.
func (f *DepositFlow) SelectNetwork(name string) error {
	if f.step != DepositStepInput && f.step != DepositStepPayment {
		return ErrWrongStep
	}
	if _, ok := f.networks[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	f.network = name
	return nil
}

// Address returns the receiving address for the selected network.
func (f *DepositFlow) Address() string { return f.networks[f.network] }

// SubmitAmount collects the deposit amount and advances to payment.
func (f *DepositFlow) SubmitAmount(amount decimal.Decimal) error {
	if f.step != DepositStepInput {
		return ErrWrongStep
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be greater than zero", ErrInvalidInput)
	}
	f.amount = amount
	f.step = DepositStepPayment
	return nil
}

// Verify runs the scripted confirmation sequence and validates the
// entered transaction identifier. On pass it credits the deposit and
// advances to success; on fail it returns to payment with a notice.
// Cancelling the context mid-sequence discards the flow with no mutation
// committed.
func (f *DepositFlow) Verify(ctx context.Context, txId string) error {
	if f.step != DepositStepPayment {
		return ErrWrongStep
	}

	clean := strings.TrimSpace(txId)
	if clean == "" {
		f.notice = msgMissingTxId
		return ErrMissingTxId
	}

	f.notice = ""
	f.step = DepositStepVerifying
	f.logs = f.logs[:0]

	for _, line := range f.verificationScript() {
		f.emit(line)
		if err := wait(ctx, f.cfg.StepDelay); err != nil {
			return err
		}
	}

	if !isLikelyTxHash(clean) {
		f.step = DepositStepPayment
		f.notice = msgInvalidTxId
		zap.L().Warn("Deposit verification rejected",
			zap.String("order_id", f.orderId),
			zap.Int("tx_id_length", len(clean)))
		return ErrVerificationFailed
	}

	if err := f.wallet.ReceiveFunds(ctx, f.amount); err != nil {
		f.step = DepositStepPayment
		f.notice = msgInvalidTxId
		return err
	}

	f.receipt = &Receipt{
		Hash:      clean,
		Block:     74000000 + rand.Int63n(1000000),
		Fee:       fmt.Sprintf("%.2f", 1+rand.Float64()*5),
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	f.step = DepositStepSuccess

	zap.L().Info("Deposit verified",
		zap.String("order_id", f.orderId),
		zap.String("network", f.network),
		zap.String("amount", f.amount.String()))
	return nil
}

// isLikelyTxHash is the only real check: the identifier is non-trivial in
// length and alphanumeric.
func isLikelyTxHash(s string) bool {
	return len(s) >= minTxHashLength && txHashPattern.MatchString(s)
}

func (f *DepositFlow) emit(line string) {
	f.logs = append(f.logs, line)
	if f.logFn != nil {
		f.logFn(line)
	}
}

// verificationScript is the fixed, ordered sequence of simulated
// confirmation steps shown while verifying.
func (f *DepositFlow) verificationScript() []string {
	address := f.Address()
	if len(address) > 8 {
		address = address[:8]
	}
	return []string{
		"Initializing blockchain connection...",
		"Establishing secure RPC node link...",
		"Searching for TX Hash in mempool...",
		fmt.Sprintf("Detected transaction on %s network.", f.network),
		"Validating block header...",
		fmt.Sprintf("Matching recipient address: %s...", address),
		fmt.Sprintf("Verifying payload amount: %s %s", f.amount.String(), models.Asset),
		"Confirming signature authenticity...",
		"Waiting for network confirmations (1/3)...",
		"Waiting for network confirmations (2/3)...",
		"Final block confirmation (3/3) received.",
	}
}
