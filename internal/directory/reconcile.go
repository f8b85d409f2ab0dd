package directory

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trustio-wallet-go/internal/models"
)

// Canonical operator credentials. Reconciliation forces these onto the
// operator account on every load; balance and history are preserved.
const (
	OperatorUsername  = "Donation01"
	OperatorEmail     = "usacharities01@gmail.com"
	OperatorPassword  = "poorgift2026"
	OperatorSecretKey = "hfzXSjhfzXSj5a7Z6b9AH5a7Z6b9AH"

	// Identifiers the operator account carried before the credential
	// rotation. Still recognized so old rosters migrate forward.
	LegacyOperatorUsername = "admin"
	LegacyOperatorEmail    = "admin@trustio.com"
)

// DefaultOperatorAccount returns the fully seeded operator account used
// when no persisted state exists for it.
func DefaultOperatorAccount() *models.Account {
	return &models.Account{
		Username:     OperatorUsername,
		Email:        OperatorEmail,
		Password:     OperatorPassword,
		SecretKey:    OperatorSecretKey,
		TotalAssets:  decimal.RequireFromString("12500.50"),
		MonthlyYield: decimal.RequireFromString("342.15"),
		Transactions: []models.Transaction{
			{
				Id:      "tx-init-1",
				Type:    models.TxReceive,
				Amount:  decimal.NewFromInt(10000),
				Asset:   models.Asset,
				Date:    "2023-10-01 09:00",
				Status:  models.StatusCompleted,
				Details: "Initial Deposit",
			},
			{
				Id:      "tx-init-2",
				Type:    models.TxSend,
				Amount:  decimal.NewFromInt(500),
				Asset:   models.Asset,
				Date:    "2023-10-05 14:30",
				Status:  models.StatusCompleted,
				Details: "External Wallet",
			},
		},
	}
}

// isOperator matches any of the legacy or canonical operator identifiers.
func isOperator(a *models.Account) bool {
	return a.Username == LegacyOperatorUsername ||
		a.Email == LegacyOperatorEmail ||
		a.Email == OperatorEmail
}

// migration is one named reconciliation step. Steps run in order on every
// load and must be idempotent; naming them keeps future credential
// canonicalization changes auditable in the logs.
type migration struct {
	name string
	run  func(d *Directory) bool
}

var migrations = []migration{
	{"canonicalize-operator-account", migrateOperatorAccount},
	{"repair-operator-session", migrateOperatorSession},
}

// reconcile runs the migration steps. The caller persists the result
// unconditionally afterwards. Must be called before the Directory is
// shared, so no locking here.
func (d *Directory) reconcile() {
	for _, m := range migrations {
		changed := m.run(d)
		zap.L().Info("Reconciliation step finished",
			zap.String("step", m.name),
			zap.Bool("changed", changed))
	}
}

// migrateOperatorAccount guarantees exactly one canonically-credentialed
// operator account, preserving any accumulated balance and history. This
// is a one-way migration: it never touches non-operator accounts.
func migrateOperatorAccount(d *Directory) bool {
	for _, a := range d.accounts {
		if !isOperator(a) {
			continue
		}

		changed := a.Username != OperatorUsername ||
			a.Email != OperatorEmail ||
			a.Password != OperatorPassword ||
			a.SecretKey != OperatorSecretKey

		a.Username = OperatorUsername
		a.Email = OperatorEmail
		a.Password = OperatorPassword
		a.SecretKey = OperatorSecretKey

		// A zero balance with no history means the persisted record was
		// never materialized; seed it. Otherwise the stored values win.
		if a.TotalAssets.IsZero() && len(a.Transactions) == 0 {
			seed := DefaultOperatorAccount()
			a.TotalAssets = seed.TotalAssets
			a.MonthlyYield = seed.MonthlyYield
			a.Transactions = seed.Transactions
			changed = true
		} else if len(a.Transactions) == 0 {
			a.Transactions = DefaultOperatorAccount().Transactions
			changed = true
		}
		return changed
	}

	d.accounts = append(d.accounts, DefaultOperatorAccount())
	return true
}

// migrateOperatorSession replaces a session that still identifies as the
// operator under stale credentials with the freshly reconciled account.
// Non-operator sessions are left untouched.
func migrateOperatorSession(d *Directory) bool {
	s := d.session
	if s == nil || !isOperator(s) || s.SecretKey == OperatorSecretKey {
		return false
	}

	if operator := d.findLocked(OperatorEmail); operator != nil {
		d.session = operator.Clone()
	} else {
		// A stale operator session must never survive reconciliation.
		d.session = nil
		d.sessionCleared = true
	}
	return true
}
