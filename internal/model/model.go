// Package model defines the core domain types shared across the lending engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies the physical collectible backing a loan. The set is
// closed; anything unrecognized is treated as CategoryOther everywhere.
type Category string

const (
	CategoryPokemon  Category = "pokemon"
	CategoryBaseball Category = "baseball"
	CategoryMagic    Category = "magic"
	CategoryComics   Category = "comics"
	CategoryOther    Category = "other"
)

// ParseCategory maps an arbitrary category string to a known Category.
// Unrecognized input falls back to CategoryOther, never an error — pricing
// and risk lookups must always have a profile to use.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPokemon:
		return CategoryPokemon
	case CategoryBaseball:
		return CategoryBaseball
	case CategoryMagic:
		return CategoryMagic
	case CategoryComics:
		return CategoryComics
	default:
		return CategoryOther
	}
}

// RiskTier is the discrete risk classification shared by the pricing engine
// and the liquidation risk monitor.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Collateral statuses.
const (
	CollateralAvailable = "available"
	CollateralPawned    = "pawned"
)

// Loan statuses. Completed and liquidated are terminal.
const (
	LoanActive     = "active"
	LoanCompleted  = "completed"
	LoanLiquidated = "liquidated"
)

// Collateral is a tokenized physical collectible registered as loanable
// collateral.
type Collateral struct {
	ID        string          `json:"id" db:"id"`
	OwnerID   string          `json:"owner_id" db:"owner_id"`
	TokenID   string          `json:"token_id" db:"token_id"`
	Name      string          `json:"name" db:"name"`
	Category  Category        `json:"category" db:"category"`
	Valuation decimal.Decimal `json:"valuation" db:"valuation"` // estimated market value
	Status    string          `json:"status" db:"status"`       // "available" or "pawned"
	ImageURL  string          `json:"image_url" db:"image_url"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// LoanQuote is the immutable output of the pricing engine. It is recomputed
// from scratch whenever any input changes; fields are never patched
// individually.
type LoanQuote struct {
	Valuation           decimal.Decimal `json:"valuation"` // floor-clamped valuation used
	Category            Category        `json:"category"`
	LoanAmount          decimal.Decimal `json:"loan_amount"` // clamped into [floor, 0.8×valuation]
	InterestRate        decimal.Decimal `json:"interest_rate"`
	TermDays            int             `json:"term_days"`
	DailyPayment        decimal.Decimal `json:"daily_payment"`
	TotalRepayment      decimal.Decimal `json:"total_repayment"`
	CollateralRatio     decimal.Decimal `json:"collateral_ratio"` // loanAmount / valuation
	RiskTier            RiskTier        `json:"risk_tier"`
	ApprovalProbability int             `json:"approval_probability"` // percent, [30, 95]
}

// Loan is an active loan record. The liquidation threshold is fixed at
// origination and never recomputed.
type Loan struct {
	ID                   string          `json:"id" db:"id"`
	BorrowerID           string          `json:"borrower_id" db:"borrower_id"`
	CollateralID         string          `json:"collateral_id" db:"collateral_id"`
	Principal            decimal.Decimal `json:"principal" db:"principal"`
	InterestRate         decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermDays             int             `json:"term_days" db:"term_days"`
	DailyPayment         decimal.Decimal `json:"daily_payment" db:"daily_payment"`
	RepaymentAmount      decimal.Decimal `json:"repayment_amount" db:"repayment_amount"`
	OutstandingBalance   decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
	LiquidationThreshold decimal.Decimal `json:"liquidation_threshold" db:"liquidation_threshold"`
	RiskTier             RiskTier        `json:"risk_tier" db:"risk_tier"`
	ApprovalProbability  int             `json:"approval_probability" db:"approval_probability"`
	Status               string          `json:"status" db:"status"`
	TxHash               string          `json:"tx_hash" db:"tx_hash"` // disbursement transaction
	OriginatedAt         time.Time       `json:"originated_at" db:"originated_at"`
	DueAt                time.Time       `json:"due_at" db:"due_at"`
}

// Repayment is an immutable record of a repayment event against a loan.
// Once created, these are never modified or deleted.
type Repayment struct {
	ID         string          `json:"id" db:"id"`
	LoanID     string          `json:"loan_id" db:"loan_id"`
	BorrowerID string          `json:"borrower_id" db:"borrower_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	TxHash     string          `json:"tx_hash" db:"tx_hash"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
}

// RiskAssessment is the output of the liquidation risk monitor. Computed
// fresh on every query; never cached across valuation changes.
type RiskAssessment struct {
	LoanID               string          `json:"loan_id"`
	RiskTier             RiskTier        `json:"risk_tier"`
	CurrentValuation     decimal.Decimal `json:"current_valuation"`
	LiquidationPrice     decimal.Decimal `json:"liquidation_price"` // collateral value that triggers liquidation
	CoverageRatio        decimal.Decimal `json:"coverage_ratio"`    // currentValuation / liquidationPrice
	DaysRemaining        int             `json:"days_remaining"`
	ProgressPercent      decimal.Decimal `json:"progress_percent"`
	RepaymentRecommended bool            `json:"repayment_recommended"`
	AssessedAt           time.Time       `json:"assessed_at"`
}

// LendingStats aggregates platform-wide lending activity.
type LendingStats struct {
	TotalBorrowed       decimal.Decimal `json:"total_borrowed"`
	TotalRepaid         decimal.Decimal `json:"total_repaid"`
	ActiveLoans         int             `json:"active_loans"`
	CompletedLoans      int             `json:"completed_loans"`
	LiquidatedLoans     int             `json:"liquidated_loans"`
	LiquidationRate     decimal.Decimal `json:"liquidation_rate"`      // percent of closed loans liquidated
	AverageInterestRate decimal.Decimal `json:"average_interest_rate"` // across all loans
}
