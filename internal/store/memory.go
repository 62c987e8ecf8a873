package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu         sync.RWMutex
	collateral map[string]*model.Collateral
	loans      map[string]*model.Loan
	repayments []model.Repayment
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collateral: make(map[string]*model.Collateral),
		loans:      make(map[string]*model.Loan),
	}
}

func (s *MemoryStore) CreateCollateral(_ context.Context, c *model.Collateral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collateral[c.ID]; ok {
		return fmt.Errorf("collateral %s already exists", c.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *c
	s.collateral[c.ID] = &copy
	return nil
}

func (s *MemoryStore) GetCollateral(_ context.Context, id string) (*model.Collateral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collateral[id]
	if !ok {
		return nil, fmt.Errorf("collateral %s not found", id)
	}
	copy := *c
	return &copy, nil
}

func (s *MemoryStore) ListCollateralByOwner(_ context.Context, ownerID string) ([]model.Collateral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Collateral
	for _, c := range s.collateral {
		if c.OwnerID == ownerID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (s *MemoryStore) UpdateCollateralStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collateral[id]
	if !ok {
		return fmt.Errorf("collateral %s not found", id)
	}
	c.Status = status
	return nil
}

func (s *MemoryStore) CreateLoan(_ context.Context, l *model.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[l.ID]; ok {
		return fmt.Errorf("loan %s already exists", l.ID)
	}

	copy := *l
	s.loans[l.ID] = &copy
	return nil
}

func (s *MemoryStore) GetLoan(_ context.Context, id string) (*model.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, fmt.Errorf("loan %s not found", id)
	}
	copy := *l
	return &copy, nil
}

func (s *MemoryStore) ListLoansByBorrower(_ context.Context, borrowerID string) ([]model.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Loan
	for _, l := range s.loans {
		if l.BorrowerID == borrowerID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListLoansByStatus(_ context.Context, status string) ([]model.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Loan
	for _, l := range s.loans {
		if l.Status == status {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (s *MemoryStore) UpdateLoanBalance(_ context.Context, id string, outstanding decimal.Decimal, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return fmt.Errorf("loan %s not found", id)
	}
	l.OutstandingBalance = outstanding
	l.Status = status
	return nil
}

func (s *MemoryStore) InsertRepayment(_ context.Context, r *model.Repayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repayments = append(s.repayments, *r)
	return nil
}

func (s *MemoryStore) GetRepaymentsByLoan(_ context.Context, loanID string) ([]model.Repayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Repayment
	for _, r := range s.repayments {
		if r.LoanID == loanID {
			result = append(result, r)
		}
	}
	return result, nil
}

// Stats aggregates lending activity across all loans and repayments.
func (s *MemoryStore) Stats(_ context.Context) (*model.LendingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.LendingStats{}
	rateSum := decimal.Zero

	for _, l := range s.loans {
		stats.TotalBorrowed = stats.TotalBorrowed.Add(l.Principal)
		rateSum = rateSum.Add(l.InterestRate)

		switch l.Status {
		case model.LoanActive:
			stats.ActiveLoans++
		case model.LoanCompleted:
			stats.CompletedLoans++
		case model.LoanLiquidated:
			stats.LiquidatedLoans++
		}
	}

	for _, r := range s.repayments {
		stats.TotalRepaid = stats.TotalRepaid.Add(r.Amount)
	}

	if n := len(s.loans); n > 0 {
		stats.AverageInterestRate = rateSum.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	if closed := stats.CompletedLoans + stats.LiquidatedLoans; closed > 0 {
		stats.LiquidationRate = decimal.NewFromInt(int64(stats.LiquidatedLoans)).
			Div(decimal.NewFromInt(int64(closed))).
			Mul(decimal.NewFromInt(100)).Round(2)
	}

	return stats, nil
}
