package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateCollateral(ctx context.Context, c *model.Collateral) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collateral (id, owner_id, token_id, name, category, valuation, status, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7, $8, $9)`,
		c.ID, c.OwnerID, c.TokenID, c.Name, string(c.Category),
		c.Valuation.String(), c.Status, c.ImageURL, c.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetCollateral(ctx context.Context, id string) (*model.Collateral, error) {
	var c model.Collateral
	var category, valuation string

	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, token_id, name, category, valuation::TEXT, status, image_url, created_at
		 FROM collateral WHERE id = $1`, id).
		Scan(&c.ID, &c.OwnerID, &c.TokenID, &c.Name, &category,
			&valuation, &c.Status, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get collateral %s: %w", id, err)
	}

	c.Category = model.ParseCategory(category)
	c.Valuation, _ = decimal.NewFromString(valuation)

	return &c, nil
}

func (s *PostgresStore) ListCollateralByOwner(ctx context.Context, ownerID string) ([]model.Collateral, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, token_id, name, category, valuation::TEXT, status, image_url, created_at
		 FROM collateral WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Collateral
	for rows.Next() {
		var c model.Collateral
		var category, valuation string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.TokenID, &c.Name, &category,
			&valuation, &c.Status, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Category = model.ParseCategory(category)
		c.Valuation, _ = decimal.NewFromString(valuation)
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) UpdateCollateralStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE collateral SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("collateral %s not found", id)
	}
	return nil
}

func (s *PostgresStore) CreateLoan(ctx context.Context, l *model.Loan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO loans (id, borrower_id, collateral_id, principal, interest_rate, term_days,
		                    daily_payment, repayment_amount, outstanding_balance, liquidation_threshold,
		                    risk_tier, approval_probability, status, tx_hash, originated_at, due_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6, $7::NUMERIC, $8::NUMERIC,
		         $9::NUMERIC, $10::NUMERIC, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.BorrowerID, l.CollateralID,
		l.Principal.String(), l.InterestRate.String(), l.TermDays,
		l.DailyPayment.String(), l.RepaymentAmount.String(),
		l.OutstandingBalance.String(), l.LiquidationThreshold.String(),
		string(l.RiskTier), l.ApprovalProbability, l.Status, l.TxHash,
		l.OriginatedAt, l.DueAt,
	)
	return err
}

const loanColumns = `id, borrower_id, collateral_id,
	principal::TEXT, interest_rate::TEXT, term_days,
	daily_payment::TEXT, repayment_amount::TEXT,
	outstanding_balance::TEXT, liquidation_threshold::TEXT,
	risk_tier, approval_probability, status, tx_hash, originated_at, due_at`

func (s *PostgresStore) GetLoan(ctx context.Context, id string) (*model.Loan, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)

	l, err := scanLoan(row)
	if err != nil {
		return nil, fmt.Errorf("get loan %s: %w", id, err)
	}
	return l, nil
}

func (s *PostgresStore) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE borrower_id = $1 ORDER BY originated_at DESC`, borrowerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLoans(rows)
}

func (s *PostgresStore) ListLoansByStatus(ctx context.Context, status string) ([]model.Loan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE status = $1 ORDER BY due_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLoans(rows)
}

func (s *PostgresStore) UpdateLoanBalance(ctx context.Context, id string, outstanding decimal.Decimal, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE loans SET outstanding_balance = $2::NUMERIC, status = $3 WHERE id = $1`,
		id, outstanding.String(), status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s not found", id)
	}
	return nil
}

func (s *PostgresStore) InsertRepayment(ctx context.Context, r *model.Repayment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO repayments (id, loan_id, borrower_id, amount, tx_hash, timestamp)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6)`,
		r.ID, r.LoanID, r.BorrowerID, r.Amount.String(), r.TxHash, r.Timestamp,
	)
	return err
}

func (s *PostgresStore) GetRepaymentsByLoan(ctx context.Context, loanID string) ([]model.Repayment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, loan_id, borrower_id, amount::TEXT, tx_hash, timestamp
		 FROM repayments WHERE loan_id = $1 ORDER BY timestamp`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Repayment
	for rows.Next() {
		var r model.Repayment
		var amount string
		if err := rows.Scan(&r.ID, &r.LoanID, &r.BorrowerID, &amount, &r.TxHash, &r.Timestamp); err != nil {
			return nil, err
		}
		r.Amount, _ = decimal.NewFromString(amount)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats aggregates lending activity in SQL.
func (s *PostgresStore) Stats(ctx context.Context) (*model.LendingStats, error) {
	stats := &model.LendingStats{}
	var totalBorrowed, avgRate string
	var active, completed, liquidated int

	err := s.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(principal), 0)::TEXT,
			COALESCE(AVG(interest_rate), 0)::TEXT,
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'liquidated')
		 FROM loans`).
		Scan(&totalBorrowed, &avgRate, &active, &completed, &liquidated)
	if err != nil {
		return nil, err
	}

	var totalRepaid string
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::TEXT FROM repayments`).Scan(&totalRepaid); err != nil {
		return nil, err
	}

	stats.TotalBorrowed, _ = decimal.NewFromString(totalBorrowed)
	stats.TotalRepaid, _ = decimal.NewFromString(totalRepaid)
	avg, _ := decimal.NewFromString(avgRate)
	stats.AverageInterestRate = avg.Round(2)
	stats.ActiveLoans = active
	stats.CompletedLoans = completed
	stats.LiquidatedLoans = liquidated

	if closed := completed + liquidated; closed > 0 {
		stats.LiquidationRate = decimal.NewFromInt(int64(liquidated)).
			Div(decimal.NewFromInt(int64(closed))).
			Mul(decimal.NewFromInt(100)).Round(2)
	}

	return stats, nil
}

// pgxRow abstracts QueryRow results for loan scanning.
type pgxRow interface {
	Scan(dest ...interface{}) error
}

type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanLoan(row pgxRow) (*model.Loan, error) {
	var l model.Loan
	var principal, rate, daily, repayment, outstanding, threshold, tier string

	if err := row.Scan(&l.ID, &l.BorrowerID, &l.CollateralID,
		&principal, &rate, &l.TermDays,
		&daily, &repayment, &outstanding, &threshold,
		&tier, &l.ApprovalProbability, &l.Status, &l.TxHash,
		&l.OriginatedAt, &l.DueAt); err != nil {
		return nil, err
	}

	l.Principal, _ = decimal.NewFromString(principal)
	l.InterestRate, _ = decimal.NewFromString(rate)
	l.DailyPayment, _ = decimal.NewFromString(daily)
	l.RepaymentAmount, _ = decimal.NewFromString(repayment)
	l.OutstandingBalance, _ = decimal.NewFromString(outstanding)
	l.LiquidationThreshold, _ = decimal.NewFromString(threshold)
	l.RiskTier = model.RiskTier(tier)

	return &l, nil
}

func scanLoans(rows pgxRows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}
