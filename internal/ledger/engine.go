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

package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trustio-wallet-go/internal/directory"
	"trustio-wallet-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02 15:04"

// Engine enforces the balance-mutation rules and produces transaction
// records. Every operation acts on the current session account, stages
// the full updated account value(s) in memory, and commits them through
// the directory in a single flush.
type Engine struct {
	dir *directory.Directory
}

func NewEngine(dir *directory.Directory) *Engine {
	return &Engine{dir: dir}
}

// newTransaction builds one immutable, completed transaction record.
func newTransaction(txType string, amount decimal.Decimal, details string) models.Transaction {
	return models.Transaction{
		Id:      "tx-" + uuid.New().String(),
		Type:    txType,
		Amount:  amount,
		Asset:   models.Asset,
		Date:    time.Now().Format(dateLayout),
		Status:  models.StatusCompleted,
		Details: details,
	}
}

// ReceiveFunds credits a deposit to the acting account. The amount being
// positive is a precondition enforced by the deposit flow, not re-checked
// here. Deposits carry no minimum-balance gate.
func (e *Engine) ReceiveFunds(ctx context.Context, amount decimal.Decimal) error {
	acting := e.dir.Session()
	if acting == nil {
		return ErrNotAuthenticated
	}

	tx := newTransaction(models.TxReceive, amount, "Deposit via Network")
	acting.TotalAssets = acting.TotalAssets.Add(amount)
	acting.Prepend(tx)

	if err := e.dir.Commit(ctx, acting); err != nil {
		return fmt.Errorf("failed to commit deposit: %w", err)
	}

	zap.L().Info("Deposit processed successfully",
		zap.String("username", acting.Username),
		zap.String("amount", amount.String()),
		zap.String("balance", acting.TotalAssets.String()))
	return nil
}

// SendFunds debits a withdrawal of amount plus fee from the acting
// account. The fee is not recorded as a separate transaction. Failure
// leaves the account unmutated.
func (e *Engine) SendFunds(ctx context.Context, address string, amount, fee decimal.Decimal) error {
	acting := e.dir.Session()
	if acting == nil {
		return ErrNotAuthenticated
	}

	if acting.TotalAssets.LessThan(MinimumBalance) {
		zap.L().Warn("Withdrawal rejected below minimum balance",
			zap.String("username", acting.Username),
			zap.String("balance", acting.TotalAssets.String()))
		return ErrBelowMinimumBalance
	}

	total := amount.Add(fee)
	if acting.TotalAssets.LessThan(total) {
		zap.L().Warn("Withdrawal rejected for insufficient balance",
			zap.String("username", acting.Username),
			zap.String("balance", acting.TotalAssets.String()),
			zap.String("requested", total.String()))
		return ErrInsufficientBalance
	}

	tx := newTransaction(models.TxSend, amount, "To: "+shortAddress(address))
	acting.TotalAssets = acting.TotalAssets.Sub(total)
	acting.Prepend(tx)

	if err := e.dir.Commit(ctx, acting); err != nil {
		return fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	zap.L().Info("Withdrawal processed successfully",
		zap.String("username", acting.Username),
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()),
		zap.String("balance", acting.TotalAssets.String()))
	return nil
}

// TransferFunds moves amount from the acting account to another wallet
// holder. Both updated account values are computed before any persistence
// write and flushed together, so the roster is never observed with only
// one side of the transfer applied.
func (e *Engine) TransferFunds(ctx context.Context, recipientIdentifier string, amount decimal.Decimal) error {
	sender := e.dir.Session()
	if sender == nil {
		return ErrNotAuthenticated
	}

	if sender.TotalAssets.LessThan(MinimumBalance) {
		return ErrBelowMinimumBalance
	}

	target := strings.TrimSpace(recipientIdentifier)
	if strings.EqualFold(target, sender.Username) {
		return ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if sender.TotalAssets.LessThan(amount) {
		return ErrInsufficientBalance
	}

	recipient := e.dir.Find(target)
	if recipient == nil {
		zap.L().Warn("Transfer to unknown recipient",
			zap.String("username", sender.Username),
			zap.String("recipient", target))
		return ErrRecipientNotFound
	}
	// The identifier may be the sender's own email. Crediting and
	// debiting the same account through two staged copies would lose the
	// credit, so this is a self transfer too.
	if recipient.Email == sender.Email {
		return ErrSelfTransfer
	}

	senderTx := newTransaction(models.TxP2PSent, amount, "To: "+target)
	recipientTx := newTransaction(models.TxP2PReceived, amount, "From: "+sender.Username)

	sender.TotalAssets = sender.TotalAssets.Sub(amount)
	sender.Prepend(senderTx)
	recipient.TotalAssets = recipient.TotalAssets.Add(amount)
	recipient.Prepend(recipientTx)

	if err := e.dir.Commit(ctx, sender, recipient); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	zap.L().Info("Transfer processed successfully",
		zap.String("sender", sender.Username),
		zap.String("recipient", recipient.Username),
		zap.String("amount", amount.String()))
	return nil
}

func shortAddress(address string) string {
	if len(address) <= 6 {
		return address + "..."
	}
	return address[:6] + "..."
}
