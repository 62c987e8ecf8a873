package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func mustQuote(t *testing.T, valuation float64, cat model.Category, amount float64, term int) *model.LoanQuote {
	t.Helper()
	q, err := Quote(d(valuation), cat, d(amount), term)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return q
}

// --- Term validation ---

func TestQuote_ZeroTermRejected(t *testing.T) {
	_, err := Quote(d(5000), model.CategoryPokemon, d(2000), 0)
	if err != ErrInvalidTerm {
		t.Errorf("expected ErrInvalidTerm for term=0, got %v", err)
	}
}

func TestQuote_NegativeTermRejected(t *testing.T) {
	_, err := Quote(d(5000), model.CategoryPokemon, d(2000), -30)
	if err != ErrInvalidTerm {
		t.Errorf("expected ErrInvalidTerm for negative term, got %v", err)
	}
}

func TestQuote_OneDayTermAccepted(t *testing.T) {
	q := mustQuote(t, 5000, model.CategoryPokemon, 2000, 1)
	if !q.DailyPayment.Equal(q.TotalRepayment) {
		t.Errorf("one-day term: daily payment %s should equal total %s",
			q.DailyPayment, q.TotalRepayment)
	}
}

// --- Input clamping ---

func TestQuote_AmountBelowFloorClamped(t *testing.T) {
	q := mustQuote(t, 5000, model.CategoryMagic, 20, 30)
	if !q.LoanAmount.Equal(d(100)) {
		t.Errorf("amount below floor should clamp to 100, got %s", q.LoanAmount)
	}
}

func TestQuote_AmountAboveMaxClamped(t *testing.T) {
	// Max loan is 80% of valuation.
	q := mustQuote(t, 5000, model.CategoryMagic, 99999, 30)
	if !q.LoanAmount.Equal(d(4000)) {
		t.Errorf("amount should clamp to 0.8×valuation = 4000, got %s", q.LoanAmount)
	}
}

func TestQuote_ValuationBelowFloorClamped(t *testing.T) {
	// A $50 valuation clamps to $100; max loan then also floors at $100,
	// so the only representable loan is exactly $100.
	q := mustQuote(t, 50, model.CategoryOther, 500, 30)
	if !q.Valuation.Equal(d(100)) {
		t.Errorf("valuation should clamp to 100, got %s", q.Valuation)
	}
	if !q.LoanAmount.Equal(d(100)) {
		t.Errorf("loan amount should pin to 100 at the valuation floor, got %s", q.LoanAmount)
	}
	if !q.CollateralRatio.Equal(d(1)) {
		t.Errorf("collateral ratio should be 1 at the floor, got %s", q.CollateralRatio)
	}
}

// --- Determinism ---

func TestQuote_Deterministic(t *testing.T) {
	a := mustQuote(t, 7350, model.CategoryComics, 3100, 60)
	b := mustQuote(t, 7350, model.CategoryComics, 3100, 60)
	if !a.InterestRate.Equal(b.InterestRate) || !a.DailyPayment.Equal(b.DailyPayment) ||
		a.RiskTier != b.RiskTier || a.ApprovalProbability != b.ApprovalProbability {
		t.Errorf("identical inputs must produce identical quotes: %+v vs %+v", a, b)
	}
}

// --- Bounds ---

func TestQuote_RateAndApprovalBounds(t *testing.T) {
	categories := []model.Category{
		model.CategoryPokemon, model.CategoryBaseball, model.CategoryMagic,
		model.CategoryComics, model.CategoryOther,
	}
	valuations := []float64{50, 150, 500, 999, 1000, 4999, 5000, 9999, 10000, 50000}
	amounts := []float64{0, 100, 500, 2000, 8000, 100000}
	terms := []int{1, 14, 15, 30, 60, 61, 90, 91, 365}

	for _, cat := range categories {
		for _, v := range valuations {
			for _, a := range amounts {
				for _, term := range terms {
					q := mustQuote(t, v, cat, a, term)
					if q.InterestRate.LessThan(MinRate) || q.InterestRate.GreaterThan(MaxRate) {
						t.Fatalf("rate %s out of [2,12] for v=%v cat=%s a=%v term=%d",
							q.InterestRate, v, cat, a, term)
					}
					if q.ApprovalProbability < MinApproval || q.ApprovalProbability > MaxApproval {
						t.Fatalf("approval %d out of [30,95] for v=%v cat=%s a=%v term=%d",
							q.ApprovalProbability, v, cat, a, term)
					}
					if q.CollateralRatio.LessThanOrEqual(decimal.Zero) || q.CollateralRatio.GreaterThan(d(1)) {
						t.Fatalf("collateral ratio %s out of (0,1] for v=%v a=%v",
							q.CollateralRatio, v, a)
					}
				}
			}
		}
	}
}

// --- Risk tier monotonicity ---

func TestQuote_RiskNeverDecreasesWithLoanRatio(t *testing.T) {
	rank := map[model.RiskTier]int{model.RiskLow: 0, model.RiskMedium: 1, model.RiskHigh: 2}

	// Ratios stepping past the 0.5 and 0.7 score thresholds.
	prev := -1
	for _, amount := range []float64{2000, 4000, 5500, 7500, 8000} {
		q := mustQuote(t, 10000, model.CategoryMagic, amount, 30)
		r := rank[q.RiskTier]
		if r < prev {
			t.Fatalf("risk tier decreased as loan ratio grew: amount=%v tier=%s", amount, q.RiskTier)
		}
		prev = r
	}
}

// --- Category fallback ---

func TestQuote_UnknownCategoryBehavesLikeOther(t *testing.T) {
	known := mustQuote(t, 5000, model.CategoryOther, 2000, 30)
	unknown := mustQuote(t, 5000, model.ParseCategory("unknown-xyz"), 2000, 30)

	if !known.InterestRate.Equal(unknown.InterestRate) {
		t.Errorf("rate mismatch: other=%s unknown=%s", known.InterestRate, unknown.InterestRate)
	}
	if known.RiskTier != unknown.RiskTier {
		t.Errorf("risk mismatch: other=%s unknown=%s", known.RiskTier, unknown.RiskTier)
	}
	if known.ApprovalProbability != unknown.ApprovalProbability {
		t.Errorf("approval mismatch: other=%d unknown=%d",
			known.ApprovalProbability, unknown.ApprovalProbability)
	}
}

// --- Reference scenarios ---

func TestQuote_PokemonMidValue(t *testing.T) {
	// 5200 pokemon, borrow 2600 over 30 days:
	// rate = 5.0 - 0.2 (>=5000) - 0.3 (pokemon) = 4.5; ratio = 0.5 (no adj).
	q := mustQuote(t, 5200, model.CategoryPokemon, 2600, 30)

	if !q.InterestRate.Equal(d(4.5)) {
		t.Errorf("expected rate 4.5, got %s", q.InterestRate)
	}
	if !q.CollateralRatio.Equal(d(0.5)) {
		t.Errorf("expected collateral ratio 0.5, got %s", q.CollateralRatio)
	}
	if q.RiskTier != model.RiskLow {
		t.Errorf("expected low risk, got %s", q.RiskTier)
	}
	// approval: 85 +10 (>5000) +10 (pokemon) → clamped to 95.
	if q.ApprovalProbability != 95 {
		t.Errorf("expected approval 95, got %d", q.ApprovalProbability)
	}
	if !q.TotalRepayment.Equal(d(2717)) {
		t.Errorf("expected total repayment 2717, got %s", q.TotalRepayment)
	}
	// 2717 / 30 = 90.566..., rounded to cents.
	if !q.DailyPayment.Equal(d(90.57)) {
		t.Errorf("expected daily payment 90.57, got %s", q.DailyPayment)
	}
}

func TestQuote_MagicMaxRatioLongTerm(t *testing.T) {
	// 12000 magic, borrow the 0.8 maximum over 90 days:
	// rate = 5.0 - 0.5 (>=10000) - 0.1 (magic) + 0.5 (ratio>0.7) + 0.5 (term>60) = 5.4.
	q := mustQuote(t, 12000, model.CategoryMagic, 9600, 90)

	if !q.InterestRate.Equal(d(5.4)) {
		t.Errorf("expected rate 5.4, got %s", q.InterestRate)
	}
	if !q.CollateralRatio.Equal(d(0.8)) {
		t.Errorf("expected collateral ratio 0.8, got %s", q.CollateralRatio)
	}
	// score: +3 (ratio>0.7) -1 (>10000) +0 (magic) = 2 → medium.
	if q.RiskTier != model.RiskMedium {
		t.Errorf("expected medium risk, got %s", q.RiskTier)
	}
	// approval: 85 -10 (ratio>0.6, not >0.8) +10 (>5000) = 85.
	if q.ApprovalProbability != 85 {
		t.Errorf("expected approval 85, got %d", q.ApprovalProbability)
	}
}

func TestQuote_LowValueOtherShortTerm(t *testing.T) {
	// 500 other, borrow the floor over 15 days:
	// rate = 5.0 + 1.0 (<1000) + 0.2 (other) - 0.3 (ratio<0.3) = 5.9
	// (term 15 is not short enough for the <15 discount).
	q := mustQuote(t, 500, model.CategoryOther, 100, 15)

	if !q.InterestRate.Equal(d(5.9)) {
		t.Errorf("expected rate 5.9, got %s", q.InterestRate)
	}
	if !q.LoanAmount.Equal(d(100)) {
		t.Errorf("expected floor loan amount 100, got %s", q.LoanAmount)
	}
	// score: 0 (ratio 0.2) +2 (<1000) +2 (other) = 4 → high.
	if q.RiskTier != model.RiskHigh {
		t.Errorf("expected high risk, got %s", q.RiskTier)
	}
	// approval: 85 -10 (other) = 75; valuation 500 is not below the 500 cutoff.
	if q.ApprovalProbability != 75 {
		t.Errorf("expected approval 75, got %d", q.ApprovalProbability)
	}
}

func TestQuote_ShortTermDiscount(t *testing.T) {
	base := mustQuote(t, 5000, model.CategoryComics, 2000, 30)
	short := mustQuote(t, 5000, model.CategoryComics, 2000, 14)
	if !base.InterestRate.Sub(short.InterestRate).Equal(d(0.2)) {
		t.Errorf("term under 15 days should discount the rate by 0.2: base=%s short=%s",
			base.InterestRate, short.InterestRate)
	}
}

// --- Category parsing ---

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want model.Category
	}{
		{"pokemon", model.CategoryPokemon},
		{"Pokemon", model.CategoryPokemon},
		{"  BASEBALL ", model.CategoryBaseball},
		{"magic", model.CategoryMagic},
		{"comics", model.CategoryComics},
		{"other", model.CategoryOther},
		{"unknown-xyz", model.CategoryOther},
		{"", model.CategoryOther},
	}
	for _, tt := range tests {
		if got := model.ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
