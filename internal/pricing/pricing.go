// Package pricing implements the loan-pricing and risk-scoring engine for
// collateralized collectible loans.
//
// Given a collateral valuation, a category, a requested amount, and a term,
// it deterministically computes the interest rate, the repayment schedule,
// a discrete risk tier, and an approval-probability score. The engine is a
// pure function of its inputs — no I/O, no randomness, safe to call on
// every tick of a UI slider.
//
// All monetary values use shopspring/decimal — never float64 for money.
// Intermediate arithmetic is exact decimal; rounding to the smallest
// currency unit happens once, on the output payment fields.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// ErrInvalidTerm is returned when the loan term is below one day. This is
// the engine's only hard rejection: a zero term would divide the repayment
// schedule by zero. Every other out-of-range input is clamped, not refused.
var ErrInvalidTerm = errors.New("pricing: loan term must be at least one day")

var (
	// MinValuation is the collateral valuation floor. Valuations below it
	// are clamped up before any computation.
	MinValuation = decimal.NewFromInt(100)

	// MaxLoanRatio caps the loan amount at this fraction of the collateral
	// valuation.
	MaxLoanRatio = decimal.NewFromFloat(0.8)

	// BaseRate is the starting annual interest rate before adjustments.
	BaseRate = decimal.NewFromFloat(5.0)

	// MinRate and MaxRate bound the final interest rate. The clamp is
	// applied once, after all four adjustments are summed.
	MinRate = decimal.NewFromFloat(2.0)
	MaxRate = decimal.NewFromFloat(12.0)

	// MoneyScale is the number of decimal places for payment rounding.
	MoneyScale int32 = 2
)

// Approval-probability bounds and base, in whole percent.
const (
	BaseApproval = 85
	MinApproval  = 30
	MaxApproval  = 95
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	valuationPremium = decimal.NewFromInt(10000) // high-value tier
	valuationSolid   = decimal.NewFromInt(5000)  // mid-value tier
	valuationLow     = decimal.NewFromInt(1000)  // low-value penalty tier
	valuationThin    = decimal.NewFromInt(500)   // approval penalty tier

	ratioHigh         = decimal.NewFromFloat(0.7)
	ratioLow          = decimal.NewFromFloat(0.3)
	ratioRiskMid      = decimal.NewFromFloat(0.5)
	ratioApprovalHigh = decimal.NewFromFloat(0.8)
	ratioApprovalMid  = decimal.NewFromFloat(0.6)
)

// Quote prices a proposed loan against a collateral valuation.
//
// Inputs are normalized first: the valuation is floor-clamped to
// MinValuation, and the requested amount is clamped into
// [MinValuation, MaxLoanRatio × valuation]. Out-of-range requests are
// silently clamped — the clamped values are part of the returned quote so
// callers can display what was actually used.
//
// The only rejected input is a term below one day (ErrInvalidTerm).
func Quote(valuation decimal.Decimal, category model.Category, amount decimal.Decimal, termDays int) (*model.LoanQuote, error) {
	if termDays < 1 {
		return nil, ErrInvalidTerm
	}

	validValuation := decimal.Max(valuation, MinValuation)
	maxLoan := decimal.Max(MinValuation, validValuation.Mul(MaxLoanRatio))
	loanAmount := clamp(amount, MinValuation, maxLoan)

	loanRatio := loanAmount.Div(validValuation)

	rate := interestRate(validValuation, category, loanRatio, termDays)

	// totalRepayment = amount × (1 + rate/100); dailyPayment = total / term.
	totalRepayment := loanAmount.Mul(one.Add(rate.Div(hundred)))
	dailyPayment := totalRepayment.Div(decimal.NewFromInt(int64(termDays)))

	return &model.LoanQuote{
		Valuation:           validValuation,
		Category:            category,
		LoanAmount:          loanAmount,
		InterestRate:        rate,
		TermDays:            termDays,
		DailyPayment:        dailyPayment.Round(MoneyScale),
		TotalRepayment:      totalRepayment.Round(MoneyScale),
		CollateralRatio:     loanRatio.Round(4),
		RiskTier:            riskTier(validValuation, category, loanRatio),
		ApprovalProbability: approvalProbability(validValuation, category, loanRatio, termDays),
	}, nil
}

// interestRate applies four independent additive adjustments to BaseRate:
// valuation tier, category profile, loan-to-value ratio, and term length.
// All four always apply; the [MinRate, MaxRate] clamp runs last, once.
func interestRate(valuation decimal.Decimal, category model.Category, loanRatio decimal.Decimal, termDays int) decimal.Decimal {
	rate := BaseRate

	switch {
	case valuation.GreaterThanOrEqual(valuationPremium):
		rate = rate.Sub(decimal.NewFromFloat(0.5)) // premium collateral, better rate
	case valuation.GreaterThanOrEqual(valuationSolid):
		rate = rate.Sub(decimal.NewFromFloat(0.2))
	case valuation.LessThan(valuationLow):
		rate = rate.Add(decimal.NewFromFloat(1.0)) // low-value collateral carries more risk
	}

	rate = rate.Add(categoryRateAdjustment(category))

	switch {
	case loanRatio.GreaterThan(ratioHigh):
		rate = rate.Add(decimal.NewFromFloat(0.5))
	case loanRatio.LessThan(ratioLow):
		rate = rate.Sub(decimal.NewFromFloat(0.3)) // conservative loans price better
	}

	switch {
	case termDays > 60:
		rate = rate.Add(decimal.NewFromFloat(0.5))
	case termDays < 15:
		rate = rate.Sub(decimal.NewFromFloat(0.2))
	}

	return clamp(rate, MinRate, MaxRate)
}

// riskTier scores the proposal and buckets it: score <= 1 is low,
// <= 3 medium, anything above high.
func riskTier(valuation decimal.Decimal, category model.Category, loanRatio decimal.Decimal) model.RiskTier {
	score := 0

	switch {
	case loanRatio.GreaterThan(ratioHigh):
		score += 3
	case loanRatio.GreaterThan(ratioRiskMid):
		score++
	}

	switch {
	case valuation.LessThan(valuationLow):
		score += 2
	case valuation.GreaterThan(valuationPremium):
		score--
	}

	score += categoryRiskPoints(category)

	switch {
	case score <= 1:
		return model.RiskLow
	case score <= 3:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// approvalProbability estimates the likelihood of approval in whole percent,
// clamped to [MinApproval, MaxApproval]. A heuristic score, not a real
// underwriting decision.
func approvalProbability(valuation decimal.Decimal, category model.Category, loanRatio decimal.Decimal, termDays int) int {
	p := BaseApproval

	switch {
	case loanRatio.GreaterThan(ratioApprovalHigh):
		p -= 20
	case loanRatio.GreaterThan(ratioApprovalMid):
		p -= 10
	}

	switch {
	case valuation.LessThan(valuationThin):
		p -= 15
	case valuation.GreaterThan(valuationSolid):
		p += 10
	}

	p += categoryApprovalBonus(category)

	switch {
	case termDays > 90:
		p -= 10
	case termDays < 15:
		p -= 5
	}

	if p < MinApproval {
		return MinApproval
	}
	if p > MaxApproval {
		return MaxApproval
	}
	return p
}

// categoryRateAdjustment returns the per-category interest rate adjustment.
// The default arm gives unknown categories the "other" profile.
func categoryRateAdjustment(c model.Category) decimal.Decimal {
	switch c {
	case model.CategoryPokemon:
		return decimal.NewFromFloat(-0.3) // highly liquid market
	case model.CategoryBaseball:
		return decimal.NewFromFloat(-0.2)
	case model.CategoryMagic:
		return decimal.NewFromFloat(-0.1)
	case model.CategoryComics:
		return decimal.Zero
	default:
		return decimal.NewFromFloat(0.2)
	}
}

func categoryRiskPoints(c model.Category) int {
	switch c {
	case model.CategoryPokemon, model.CategoryBaseball:
		return -1
	case model.CategoryMagic:
		return 0
	case model.CategoryComics:
		return 1
	default:
		return 2
	}
}

func categoryApprovalBonus(c model.Category) int {
	switch c {
	case model.CategoryPokemon:
		return 10
	case model.CategoryBaseball:
		return 5
	case model.CategoryMagic:
		return 0
	case model.CategoryComics:
		return -5
	default:
		return -10
	}
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
