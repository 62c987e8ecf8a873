package exposure

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func activeLoan(outstanding float64) model.Loan {
	return model.Loan{Status: model.LoanActive, OutstandingBalance: d(outstanding)}
}

func TestCheck_WithinLimits(t *testing.T) {
	limiter := NewLimiter(5, d(50000))

	if err := limiter.Check(d(1000), nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCheck_LoanCountExceeded(t *testing.T) {
	limiter := NewLimiter(2, d(50000))

	existing := []model.Loan{activeLoan(100), activeLoan(100)}

	err := limiter.Check(d(100), existing)
	if err != ErrLoanCountExceeded {
		t.Errorf("expected ErrLoanCountExceeded, got %v", err)
	}
}

func TestCheck_LoanCountAtLimit(t *testing.T) {
	limiter := NewLimiter(2, d(50000))

	existing := []model.Loan{activeLoan(100)}

	// Second concurrent loan is exactly at the limit — allowed.
	if err := limiter.Check(d(100), existing); err != nil {
		t.Errorf("expected no error at the count limit, got %v", err)
	}
}

func TestCheck_OutstandingExceeded(t *testing.T) {
	limiter := NewLimiter(5, d(2000))

	existing := []model.Loan{activeLoan(800), activeLoan(800)}

	// 800 + 800 + 500 = 2100 > 2000.
	err := limiter.Check(d(500), existing)
	if err != ErrOutstandingExceeded {
		t.Errorf("expected ErrOutstandingExceeded, got %v", err)
	}
}

func TestCheck_OutstandingAtLimit(t *testing.T) {
	limiter := NewLimiter(5, d(2000))

	existing := []model.Loan{activeLoan(800), activeLoan(800)}

	// Exactly at the limit is allowed.
	if err := limiter.Check(d(400), existing); err != nil {
		t.Errorf("expected no error at the balance limit, got %v", err)
	}
}

func TestCheck_ClosedLoansIgnored(t *testing.T) {
	limiter := NewLimiter(2, d(2000))

	existing := []model.Loan{
		activeLoan(800),
		{Status: model.LoanCompleted, OutstandingBalance: decimal.Zero},
		{Status: model.LoanLiquidated, OutstandingBalance: d(900)},
	}

	// Only the one active loan counts against either limit.
	if err := limiter.Check(d(1000), existing); err != nil {
		t.Errorf("closed loans should not count, got %v", err)
	}
}
