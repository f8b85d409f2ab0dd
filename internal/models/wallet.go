package models

import (
	"github.com/shopspring/decimal"
)

// Asset is the single asset unit every balance and transaction is
// denominated in.
const Asset = "USDT"

// Transaction types produced by the ledger engine.
const (
	TxReceive     = "Receive"
	TxSend        = "Send"
	TxP2PSent     = "P2P Sent"
	TxP2PReceived = "P2P Received"
)

// Transaction statuses. The engine only ever emits Completed; Pending and
// Failed are reserved for imported histories.
const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
	StatusFailed    = "Failed"
)

// Transaction is an immutable record of one balance-affecting event.
// Direction is encoded by Type, not by the sign of Amount.
type Transaction struct {
	Id      string          `json:"id"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Asset   string          `json:"asset"`
	Date    string          `json:"date"`
	Status  string          `json:"status"`
	Details string          `json:"details"`
}

// Account represents one wallet holder. Transactions are ordered newest
// first and are append-only from the engine's perspective.
type Account struct {
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	SecretKey    string          `json:"secretKey"`
	TotalAssets  decimal.Decimal `json:"totalAssets"`
	MonthlyYield decimal.Decimal `json:"monthlyYield"`
	Transactions []Transaction   `json:"transactions"`
}

// Clone returns a deep copy so callers can stage mutations without
// touching the roster until commit.
func (a *Account) Clone() *Account {
	c := *a
	c.Transactions = make([]Transaction, len(a.Transactions))
	copy(c.Transactions, a.Transactions)
	return &c
}

// Prepend inserts a transaction at the head of the history (newest first).
func (a *Account) Prepend(tx Transaction) {
	a.Transactions = append([]Transaction{tx}, a.Transactions...)
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ValidTheme reports whether t is one of the three supported values.
func ValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}
