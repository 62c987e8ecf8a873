// Package exposure enforces per-borrower lending limits.
//
// A borrower pawning ten cards from the same binder has correlated risk: a
// price slide in one collectible segment moves all of their collateral at
// once. This package caps how much a single borrower can owe at any time,
// both by loan count and by aggregate outstanding balance.
package exposure

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

var (
	// ErrLoanCountExceeded is returned when a new loan would push the
	// borrower past the maximum number of concurrent active loans.
	ErrLoanCountExceeded = errors.New("exposure: active loan limit exceeded")

	// ErrOutstandingExceeded is returned when a new loan would push the
	// borrower's aggregate outstanding balance past the maximum.
	ErrOutstandingExceeded = errors.New("exposure: outstanding balance limit exceeded")
)

// Limiter enforces per-borrower exposure limits at origination.
type Limiter struct {
	// MaxActiveLoans is the maximum number of concurrently active loans
	// a single borrower may hold.
	MaxActiveLoans int

	// MaxOutstanding is the maximum aggregate outstanding balance across
	// all of a borrower's active loans, including the loan being opened.
	MaxOutstanding decimal.Decimal
}

// NewLimiter creates a limiter with the given count and balance limits.
func NewLimiter(maxActiveLoans int, maxOutstanding decimal.Decimal) *Limiter {
	if maxActiveLoans < 1 {
		maxActiveLoans = 1
	}
	return &Limiter{
		MaxActiveLoans: maxActiveLoans,
		MaxOutstanding: maxOutstanding,
	}
}

// Check validates whether opening a loan with the given total repayment
// obligation respects the borrower's limits. existing is the borrower's
// full loan history; only active loans count toward exposure.
//
// Returns nil if the loan is within limits, or an error describing the
// violation.
func (l *Limiter) Check(newObligation decimal.Decimal, existing []model.Loan) error {
	active := 0
	total := newObligation

	for i := range existing {
		if existing[i].Status != model.LoanActive {
			continue
		}
		active++
		total = total.Add(existing[i].OutstandingBalance)
	}

	if active+1 > l.MaxActiveLoans {
		return ErrLoanCountExceeded
	}
	if total.GreaterThan(l.MaxOutstanding) {
		return ErrOutstandingExceeded
	}
	return nil
}
