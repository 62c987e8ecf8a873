// Package risk implements the liquidation risk monitor for active loans.
//
// Given an active loan, a current collateral valuation, and the wall clock,
// it classifies liquidation risk and computes the remaining schedule. The
// monitor only classifies — it never transitions loan state; liquidation
// itself is a policy decision taken by the sweep in the lending service.
//
// Assessments are pure functions over their inputs and are computed fresh
// on every query, never cached across valuation changes.
package risk

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

var (
	// CoverageLow and CoverageMedium are the coverage-ratio bands
	// (currentValuation / liquidationThreshold) separating the tiers:
	// above CoverageLow the collateral comfortably clears the threshold,
	// above CoverageMedium it is getting close, at or below it the loan
	// is in the liquidation zone.
	CoverageLow    = decimal.NewFromFloat(1.5)
	CoverageMedium = decimal.NewFromFloat(1.1)

	// EscalationWindowDays is how close to the due date an unpaid loan
	// must be before time pressure raises the value-derived tier one level.
	EscalationWindowDays = 3

	hundred = decimal.NewFromInt(100)
)

// Assess classifies the liquidation risk of an active loan.
//
// The tier is driven by how close the current collateral valuation sits to
// the loan's liquidation threshold, then escalated for time pressure: one
// level when an unpaid loan enters the escalation window before its due
// date, and straight to high once it is overdue with a balance outstanding.
// RepaymentRecommended is set on high so callers can surface a warning.
func Assess(loan *model.Loan, currentValuation decimal.Decimal, now time.Time) *model.RiskAssessment {
	days := daysRemaining(loan.DueAt, now)

	tier := coverageTier(currentValuation, loan.LiquidationThreshold)

	outstanding := loan.OutstandingBalance.IsPositive()
	if outstanding {
		if days == 0 {
			tier = model.RiskHigh
		} else if days <= EscalationWindowDays {
			tier = escalate(tier)
		}
	}

	coverage := decimal.Zero
	if loan.LiquidationThreshold.IsPositive() {
		coverage = currentValuation.Div(loan.LiquidationThreshold).Round(4)
	}

	return &model.RiskAssessment{
		LoanID:               loan.ID,
		RiskTier:             tier,
		CurrentValuation:     currentValuation,
		LiquidationPrice:     loan.LiquidationThreshold,
		CoverageRatio:        coverage,
		DaysRemaining:        days,
		ProgressPercent:      progressPercent(loan.TermDays, days),
		RepaymentRecommended: tier == model.RiskHigh && outstanding,
		AssessedAt:           now,
	}
}

// daysRemaining is ceil((due − now) / 1 day), floored at zero — a loan due
// later today still has one day remaining, an overdue loan never goes
// negative.
func daysRemaining(due, now time.Time) int {
	remaining := due.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// progressPercent is how far through its term the loan is, in [0, 100].
func progressPercent(termDays, remaining int) decimal.Decimal {
	if termDays < 1 {
		return decimal.Zero
	}
	elapsed := termDays - remaining
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > termDays {
		elapsed = termDays
	}
	return decimal.NewFromInt(int64(elapsed)).
		Div(decimal.NewFromInt(int64(termDays))).
		Mul(hundred).Round(2)
}

// coverageTier buckets the valuation-to-threshold ratio. A non-positive
// threshold means the loan cannot be under-collateralized by value.
func coverageTier(valuation, threshold decimal.Decimal) model.RiskTier {
	if !threshold.IsPositive() {
		return model.RiskLow
	}
	ratio := valuation.Div(threshold)
	switch {
	case ratio.GreaterThan(CoverageLow):
		return model.RiskLow
	case ratio.GreaterThan(CoverageMedium):
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

func escalate(t model.RiskTier) model.RiskTier {
	switch t {
	case model.RiskLow:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}
