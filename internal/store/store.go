// Package store defines the persistence interface for the lending engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Collateral registry ---

	// CreateCollateral registers a tokenized collectible.
	CreateCollateral(ctx context.Context, c *model.Collateral) error

	// GetCollateral retrieves a collateral record by its ID.
	GetCollateral(ctx context.Context, id string) (*model.Collateral, error)

	// ListCollateralByOwner returns all collateral registered by an owner.
	ListCollateralByOwner(ctx context.Context, ownerID string) ([]model.Collateral, error)

	// UpdateCollateralStatus moves collateral between available and pawned.
	UpdateCollateralStatus(ctx context.Context, id, status string) error

	// --- Loans ---

	// CreateLoan persists a newly originated loan.
	CreateLoan(ctx context.Context, l *model.Loan) error

	// GetLoan retrieves a loan by its ID.
	GetLoan(ctx context.Context, id string) (*model.Loan, error)

	// ListLoansByBorrower returns all loans for a borrower.
	ListLoansByBorrower(ctx context.Context, borrowerID string) ([]model.Loan, error)

	// ListLoansByStatus returns all loans in the given state.
	ListLoansByStatus(ctx context.Context, status string) ([]model.Loan, error)

	// UpdateLoanBalance sets the outstanding balance and status after a
	// repayment event or a liquidation decision.
	UpdateLoanBalance(ctx context.Context, id string, outstanding decimal.Decimal, status string) error

	// --- Immutable repayment ledger ---

	// InsertRepayment appends an immutable repayment record.
	InsertRepayment(ctx context.Context, r *model.Repayment) error

	// GetRepaymentsByLoan returns all repayments against a loan.
	GetRepaymentsByLoan(ctx context.Context, loanID string) ([]model.Repayment, error)

	// --- Aggregates ---

	// Stats computes platform-wide lending statistics.
	Stats(ctx context.Context) (*model.LendingStats, error)
}
