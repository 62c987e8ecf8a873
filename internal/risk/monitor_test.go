package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// testLoan builds a 30-day loan originated at origin with an $800
// liquidation threshold (80% of a $1000 valuation at origination).
func testLoan(origin time.Time, outstanding float64) *model.Loan {
	return &model.Loan{
		ID:                   "loan-1",
		BorrowerID:           "user-1",
		CollateralID:         "col-1",
		Principal:            d(500),
		TermDays:             30,
		OutstandingBalance:   d(outstanding),
		LiquidationThreshold: d(800),
		Status:               model.LoanActive,
		OriginatedAt:         origin,
		DueAt:                origin.AddDate(0, 0, 30),
	}
}

var origin = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Coverage tiers ---

func TestAssess_CoverageBands(t *testing.T) {
	loan := testLoan(origin, 525)
	now := origin.AddDate(0, 0, 5) // well before the escalation window

	tests := []struct {
		valuation float64
		want      model.RiskTier
	}{
		{2000, model.RiskLow},    // ratio 2.5
		{1201, model.RiskLow},    // ratio just above 1.5
		{1200, model.RiskMedium}, // ratio exactly 1.5 is not low
		{1000, model.RiskMedium}, // ratio 1.25
		{881, model.RiskMedium},  // ratio just above 1.1
		{880, model.RiskHigh},    // ratio exactly 1.1 is not medium
		{800, model.RiskHigh},    // at the threshold
		{400, model.RiskHigh},    // under water
	}
	for _, tt := range tests {
		a := Assess(loan, d(tt.valuation), now)
		if a.RiskTier != tt.want {
			t.Errorf("valuation %v: expected %s, got %s", tt.valuation, tt.want, a.RiskTier)
		}
	}
}

func TestAssess_LiquidationPriceIsThreshold(t *testing.T) {
	loan := testLoan(origin, 525)
	a := Assess(loan, d(2000), origin)
	if !a.LiquidationPrice.Equal(d(800)) {
		t.Errorf("liquidation price should be the origination threshold 800, got %s", a.LiquidationPrice)
	}
	if !a.CoverageRatio.Equal(d(2.5)) {
		t.Errorf("expected coverage ratio 2.5, got %s", a.CoverageRatio)
	}
}

// --- Schedule math ---

func TestAssess_DaysRemaining(t *testing.T) {
	loan := testLoan(origin, 525)

	tests := []struct {
		now  time.Time
		want int
	}{
		{origin, 30},
		{origin.AddDate(0, 0, 10), 20},
		{origin.AddDate(0, 0, 29).Add(12 * time.Hour), 1}, // partial day rounds up
		{loan.DueAt, 0},
		{loan.DueAt.AddDate(0, 0, 5), 0}, // never negative
	}
	for _, tt := range tests {
		a := Assess(loan, d(2000), tt.now)
		if a.DaysRemaining != tt.want {
			t.Errorf("now=%s: expected %d days remaining, got %d", tt.now, tt.want, a.DaysRemaining)
		}
	}
}

func TestAssess_ProgressPercent(t *testing.T) {
	loan := testLoan(origin, 525)

	a := Assess(loan, d(2000), origin)
	if !a.ProgressPercent.Equal(decimal.Zero) {
		t.Errorf("expected 0%% progress at origination, got %s", a.ProgressPercent)
	}

	a = Assess(loan, d(2000), origin.AddDate(0, 0, 15))
	if !a.ProgressPercent.Equal(d(50)) {
		t.Errorf("expected 50%% progress at midpoint, got %s", a.ProgressPercent)
	}

	a = Assess(loan, d(2000), loan.DueAt.AddDate(0, 0, 2))
	if !a.ProgressPercent.Equal(d(100)) {
		t.Errorf("progress should cap at 100%%, got %s", a.ProgressPercent)
	}
}

// --- Time-pressure escalation ---

func TestAssess_EscalatesNearDueDate(t *testing.T) {
	loan := testLoan(origin, 525)
	nearDue := loan.DueAt.AddDate(0, 0, -2)

	// Healthy coverage, but unpaid with 2 days left: low → medium.
	a := Assess(loan, d(2000), nearDue)
	if a.RiskTier != model.RiskMedium {
		t.Errorf("expected medium near due date, got %s", a.RiskTier)
	}

	// Medium coverage escalates to high.
	a = Assess(loan, d(1000), nearDue)
	if a.RiskTier != model.RiskHigh {
		t.Errorf("expected high near due date, got %s", a.RiskTier)
	}
}

func TestAssess_OverdueUnpaidIsHigh(t *testing.T) {
	loan := testLoan(origin, 525)
	a := Assess(loan, d(5000), loan.DueAt.Add(time.Hour))
	if a.RiskTier != model.RiskHigh {
		t.Errorf("overdue unpaid loan must be high risk, got %s", a.RiskTier)
	}
	if !a.RepaymentRecommended {
		t.Error("high risk with a balance should recommend repayment")
	}
}

func TestAssess_FullyRepaidNeverEscalates(t *testing.T) {
	loan := testLoan(origin, 0)
	a := Assess(loan, d(2000), loan.DueAt.AddDate(0, 0, 10))
	if a.RiskTier != model.RiskLow {
		t.Errorf("repaid loan with healthy coverage should stay low, got %s", a.RiskTier)
	}
	if a.RepaymentRecommended {
		t.Error("repaid loan should not recommend repayment")
	}
}

// --- Determinism ---

func TestAssess_Deterministic(t *testing.T) {
	loan := testLoan(origin, 300)
	now := origin.AddDate(0, 0, 12)

	a := Assess(loan, d(950), now)
	b := Assess(loan, d(950), now)
	if a.RiskTier != b.RiskTier || !a.CoverageRatio.Equal(b.CoverageRatio) ||
		a.DaysRemaining != b.DaysRemaining {
		t.Errorf("identical inputs must produce identical assessments: %+v vs %+v", a, b)
	}
}
