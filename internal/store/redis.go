package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateCollateral(ctx context.Context, c *model.Collateral) error {
	if err := s.primary.CreateCollateral(ctx, c); err != nil {
		return err
	}
	s.cacheCollateral(ctx, c)
	return nil
}

func (s *CachedStore) UpdateCollateralStatus(ctx context.Context, id, status string) error {
	if err := s.primary.UpdateCollateralStatus(ctx, id, status); err != nil {
		return err
	}
	// Invalidate cache; next read will re-populate.
	s.rdb.Del(ctx, collateralKey(id))
	return nil
}

func (s *CachedStore) CreateLoan(ctx context.Context, l *model.Loan) error {
	if err := s.primary.CreateLoan(ctx, l); err != nil {
		return err
	}
	s.cacheLoan(ctx, l)
	s.rdb.Del(ctx, statsKey())
	return nil
}

func (s *CachedStore) UpdateLoanBalance(ctx context.Context, id string, outstanding decimal.Decimal, status string) error {
	if err := s.primary.UpdateLoanBalance(ctx, id, outstanding, status); err != nil {
		return err
	}
	s.rdb.Del(ctx, loanKey(id), statsKey())
	return nil
}

func (s *CachedStore) InsertRepayment(ctx context.Context, r *model.Repayment) error {
	if err := s.primary.InsertRepayment(ctx, r); err != nil {
		return err
	}
	s.rdb.Del(ctx, statsKey())
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetCollateral(ctx context.Context, id string) (*model.Collateral, error) {
	data, err := s.rdb.Get(ctx, collateralKey(id)).Bytes()
	if err == nil {
		var c model.Collateral
		if json.Unmarshal(data, &c) == nil {
			return &c, nil
		}
	}

	// Cache miss: read from primary.
	c, err := s.primary.GetCollateral(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheCollateral(ctx, c)
	return c, nil
}

func (s *CachedStore) GetLoan(ctx context.Context, id string) (*model.Loan, error) {
	data, err := s.rdb.Get(ctx, loanKey(id)).Bytes()
	if err == nil {
		var l model.Loan
		if json.Unmarshal(data, &l) == nil {
			return &l, nil
		}
	}

	l, err := s.primary.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheLoan(ctx, l)
	return l, nil
}

func (s *CachedStore) Stats(ctx context.Context) (*model.LendingStats, error) {
	data, err := s.rdb.Get(ctx, statsKey()).Bytes()
	if err == nil {
		var stats model.LendingStats
		if json.Unmarshal(data, &stats) == nil {
			return &stats, nil
		}
	}

	stats, err := s.primary.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		s.rdb.Set(ctx, statsKey(), data, s.ttl)
	}
	return stats, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListCollateralByOwner(ctx context.Context, ownerID string) ([]model.Collateral, error) {
	return s.primary.ListCollateralByOwner(ctx, ownerID)
}

func (s *CachedStore) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	return s.primary.ListLoansByBorrower(ctx, borrowerID)
}

func (s *CachedStore) ListLoansByStatus(ctx context.Context, status string) ([]model.Loan, error) {
	return s.primary.ListLoansByStatus(ctx, status)
}

func (s *CachedStore) GetRepaymentsByLoan(ctx context.Context, loanID string) ([]model.Repayment, error) {
	return s.primary.GetRepaymentsByLoan(ctx, loanID)
}

// --- Cache helpers ---

func (s *CachedStore) cacheCollateral(ctx context.Context, c *model.Collateral) {
	if data, err := json.Marshal(c); err == nil {
		s.rdb.Set(ctx, collateralKey(c.ID), data, s.ttl)
	}
}

func (s *CachedStore) cacheLoan(ctx context.Context, l *model.Loan) {
	if data, err := json.Marshal(l); err == nil {
		s.rdb.Set(ctx, loanKey(l.ID), data, s.ttl)
	}
}

func collateralKey(id string) string { return fmt.Sprintf("collateral:%s", id) }
func loanKey(id string) string       { return fmt.Sprintf("loan:%s", id) }
func statsKey() string               { return "lending:stats" }
