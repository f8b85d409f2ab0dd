package ledger

import (
	"context"
	"errors"
	"testing"

	"trustio-wallet-go/internal/directory"
	"trustio-wallet-go/internal/models"
	"trustio-wallet-go/internal/storage"

	"github.com/shopspring/decimal"
)

func setupTestEngine(t *testing.T) (*Engine, *directory.Directory, *storage.Service, func()) {
	ctx := context.Background()
	store, err := storage.NewMemoryService(ctx)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}

	dir, err := directory.Load(ctx, store)
	if err != nil {
		store.Close()
		t.Fatalf("Failed to load directory: %v", err)
	}

	return NewEngine(dir), dir, store, store.Close
}

func registerAndLogin(t *testing.T, dir *directory.Directory, username, email string, balance int64) *models.Account {
	ctx := context.Background()
	account := &models.Account{
		Username:    username,
		Email:       email,
		Password:    "pw-" + username,
		SecretKey:   "sk-" + username,
		TotalAssets: decimal.NewFromInt(balance),
	}
	if err := dir.Register(ctx, account); err != nil {
		t.Fatalf("Register %s failed: %v", username, err)
	}
	logged, err := dir.Login(ctx, username, "pw-"+username)
	if err != nil {
		t.Fatalf("Login %s failed: %v", username, err)
	}
	return logged
}

func register(t *testing.T, dir *directory.Directory, username, email string, balance int64) {
	account := &models.Account{
		Username:    username,
		Email:       email,
		Password:    "pw-" + username,
		SecretKey:   "sk-" + username,
		TotalAssets: decimal.NewFromInt(balance),
	}
	if err := dir.Register(context.Background(), account); err != nil {
		t.Fatalf("Register %s failed: %v", username, err)
	}
}

func TestOperationsRequireSession(t *testing.T) {
	engine, _, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	if err := engine.ReceiveFunds(ctx, decimal.NewFromInt(100)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("ReceiveFunds: expected ErrNotAuthenticated, got: %v", err)
	}
	if err := engine.SendFunds(ctx, "TAddr", decimal.NewFromInt(100), decimal.NewFromInt(1)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SendFunds: expected ErrNotAuthenticated, got: %v", err)
	}
	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(100)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("TransferFunds: expected ErrNotAuthenticated, got: %v", err)
	}
}

func TestReceiveFundsAccumulates(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	registerAndLogin(t, dir, "alice", "alice@example.com", 0)

	if err := engine.ReceiveFunds(ctx, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("First deposit failed: %v", err)
	}
	if err := engine.ReceiveFunds(ctx, decimal.NewFromInt(2000)); err != nil {
		t.Fatalf("Second deposit failed: %v", err)
	}

	account := dir.Find("alice@example.com")
	if !account.TotalAssets.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected balance 3000, got %s", account.TotalAssets.String())
	}
	if len(account.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(account.Transactions))
	}
	// Newest first.
	if !account.Transactions[0].Amount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Newest transaction should lead the history, got %s", account.Transactions[0].Amount.String())
	}
	tx := account.Transactions[0]
	if tx.Type != models.TxReceive || tx.Status != models.StatusCompleted || tx.Asset != models.Asset {
		t.Errorf("Malformed deposit record: %+v", tx)
	}
}

func TestSendFundsBelowMinimumLeavesAccountUntouched(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	registerAndLogin(t, dir, "alice", "alice@example.com", 1499)

	err := engine.SendFunds(ctx, "TXk9QaddressXYZ", decimal.NewFromInt(100), decimal.NewFromInt(1))
	if !errors.Is(err, ErrBelowMinimumBalance) {
		t.Fatalf("Expected ErrBelowMinimumBalance, got: %v", err)
	}

	account := dir.Find("alice@example.com")
	if !account.TotalAssets.Equal(decimal.NewFromInt(1499)) {
		t.Errorf("Balance mutated on rejected withdrawal: %s", account.TotalAssets.String())
	}
	if len(account.Transactions) != 0 {
		t.Errorf("Transaction recorded for rejected withdrawal")
	}
}

func TestSendFundsChargesAmountPlusFee(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	registerAndLogin(t, dir, "alice", "alice@example.com", 2000)

	fee := decimal.NewFromInt(1)
	if err := engine.SendFunds(ctx, "TXk9QaddressXYZ", decimal.NewFromInt(500), fee); err != nil {
		t.Fatalf("Withdrawal failed: %v", err)
	}

	account := dir.Find("alice@example.com")
	if !account.TotalAssets.Equal(decimal.NewFromInt(1499)) {
		t.Errorf("Expected balance 1499, got %s", account.TotalAssets.String())
	}
	if len(account.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(account.Transactions))
	}
	tx := account.Transactions[0]
	// The record carries the amount alone, not amount plus fee.
	if !tx.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected recorded amount 500, got %s", tx.Amount.String())
	}
	if tx.Type != models.TxSend {
		t.Errorf("Expected type %s, got %s", models.TxSend, tx.Type)
	}
	if tx.Details != "To: TXk9Qa..." {
		t.Errorf("Unexpected details: %s", tx.Details)
	}
}

func TestSendFundsInsufficientForAmountPlusFee(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	registerAndLogin(t, dir, "alice", "alice@example.com", 2000)

	err := engine.SendFunds(ctx, "TXk9QaddressXYZ", decimal.NewFromInt(2000), decimal.NewFromInt(1))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got: %v", err)
	}

	account := dir.Find("alice@example.com")
	if !account.TotalAssets.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Balance mutated on rejected withdrawal: %s", account.TotalAssets.String())
	}
}

func TestTransferFundsMovesBothSides(t *testing.T) {
	engine, dir, store, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	register(t, dir, "bob", "bob@example.com", 500)
	registerAndLogin(t, dir, "alice", "alice@example.com", 2000)

	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(300)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	sender := dir.Find("alice@example.com")
	recipient := dir.Find("bob@example.com")
	if !sender.TotalAssets.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("Expected sender balance 1700, got %s", sender.TotalAssets.String())
	}
	if !recipient.TotalAssets.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected recipient balance 800, got %s", recipient.TotalAssets.String())
	}

	if len(sender.Transactions) != 1 || sender.Transactions[0].Type != models.TxP2PSent {
		t.Errorf("Sender record missing or mistyped: %+v", sender.Transactions)
	}
	if len(recipient.Transactions) != 1 || recipient.Transactions[0].Type != models.TxP2PReceived {
		t.Errorf("Recipient record missing or mistyped: %+v", recipient.Transactions)
	}
	if recipient.Transactions[0].Details != "From: alice" {
		t.Errorf("Unexpected recipient details: %s", recipient.Transactions[0].Details)
	}

	// Both sides must be visible after a cold reload, never just one.
	reloaded, err := directory.Load(ctx, store)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !reloaded.Find("alice@example.com").TotalAssets.Equal(decimal.NewFromInt(1700)) {
		t.Error("Sender debit not persisted")
	}
	if !reloaded.Find("bob@example.com").TotalAssets.Equal(decimal.NewFromInt(800)) {
		t.Error("Recipient credit not persisted")
	}
}

func TestTransferFundsRejectsSelf(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	registerAndLogin(t, dir, "alice", "alice@example.com", 2000)

	if err := engine.TransferFunds(ctx, "ALICE", decimal.NewFromInt(100)); !errors.Is(err, ErrSelfTransfer) {
		t.Errorf("Username self transfer: expected ErrSelfTransfer, got: %v", err)
	}
	if err := engine.TransferFunds(ctx, "alice@example.com", decimal.NewFromInt(100)); !errors.Is(err, ErrSelfTransfer) {
		t.Errorf("Own email self transfer: expected ErrSelfTransfer, got: %v", err)
	}

	account := dir.Find("alice@example.com")
	if !account.TotalAssets.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Balance mutated on rejected transfer: %s", account.TotalAssets.String())
	}
}

func TestTransferFundsValidation(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	register(t, dir, "bob", "bob@example.com", 0)
	registerAndLogin(t, dir, "alice", "alice@example.com", 2000)

	if err := engine.TransferFunds(ctx, "bob", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Zero amount: expected ErrInvalidAmount, got: %v", err)
	}
	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Negative amount: expected ErrInvalidAmount, got: %v", err)
	}
	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(2001)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Overdraw: expected ErrInsufficientBalance, got: %v", err)
	}
	if err := engine.TransferFunds(ctx, "nobody", decimal.NewFromInt(100)); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("Unknown recipient: expected ErrRecipientNotFound, got: %v", err)
	}

	if !dir.Find("alice@example.com").TotalAssets.Equal(decimal.NewFromInt(2000)) {
		t.Error("Sender mutated by rejected transfers")
	}
	if !dir.Find("bob@example.com").TotalAssets.Equal(decimal.Zero) {
		t.Error("Recipient mutated by rejected transfers")
	}
}

func TestTransferFundsBelowMinimum(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	register(t, dir, "bob", "bob@example.com", 0)
	registerAndLogin(t, dir, "alice", "alice@example.com", 1000)

	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(100)); !errors.Is(err, ErrBelowMinimumBalance) {
		t.Errorf("Expected ErrBelowMinimumBalance, got: %v", err)
	}
}

// Balance always equals the starting value plus signed transaction amounts.
func TestBalanceMatchesTransactionSum(t *testing.T) {
	engine, dir, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	register(t, dir, "bob", "bob@example.com", 0)
	registerAndLogin(t, dir, "alice", "alice@example.com", 0)

	fee := decimal.NewFromInt(1)
	if err := engine.ReceiveFunds(ctx, decimal.NewFromInt(5000)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := engine.SendFunds(ctx, "TXk9QaddressXYZ", decimal.NewFromInt(700), fee); err != nil {
		t.Fatalf("Withdrawal failed: %v", err)
	}
	if err := engine.TransferFunds(ctx, "bob", decimal.NewFromInt(300)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	account := dir.Find("alice@example.com")
	sum := decimal.Zero
	for _, tx := range account.Transactions {
		switch tx.Type {
		case models.TxReceive, models.TxP2PReceived:
			sum = sum.Add(tx.Amount)
		case models.TxSend:
			sum = sum.Sub(tx.Amount.Add(fee))
		case models.TxP2PSent:
			sum = sum.Sub(tx.Amount)
		}
	}
	if !account.TotalAssets.Equal(sum) {
		t.Errorf("Balance %s does not match transaction sum %s",
			account.TotalAssets.String(), sum.String())
	}
}

func TestUserMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrNotAuthenticated, "Not logged in"},
		{ErrBelowMinimumBalance, "Minimum balance of 1,500 USDT required to enable transfers."},
		{ErrSelfTransfer, "Cannot transfer to yourself"},
		{ErrInvalidAmount, "Invalid amount"},
		{ErrInsufficientBalance, "Insufficient balance"},
		{ErrRecipientNotFound, "User not found"},
		{errors.New("disk full"), "Transaction failed"},
	}
	for _, c := range cases {
		if got := UserMessage(c.err); got != c.want {
			t.Errorf("UserMessage(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
