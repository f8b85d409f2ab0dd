package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Flow     FlowConfig
}

// DatabaseConfig holds settings for the SQLite-backed document store
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// FlowConfig holds settings for the guarded deposit/send workflows
type FlowConfig struct {
	// StepDelay paces the scripted verification log lines.
	StepDelay time.Duration
	// ProcessingDelay runs before the ledger call in the Secure-Send flow.
	ProcessingDelay time.Duration
	// DepositWindow is the advisory payment countdown.
	DepositWindow time.Duration
	// WithdrawFee is deducted on top of the withdrawn amount.
	WithdrawFee decimal.Decimal
	// NetworksFile points at the YAML list of receiving addresses.
	NetworksFile string
}
