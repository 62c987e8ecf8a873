// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Empty DatabaseURL selects the in-memory store; empty RedisURL
	// disables the cache layer.
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	// ApprovalCutoff is the minimum approval probability (percent) an
	// origination must score.
	ApprovalCutoff int

	// SweepInterval is how often the liquidation sweep runs.
	SweepInterval time.Duration

	// Per-borrower exposure limits.
	MaxActiveLoans    int
	MaxOutstandingUSD int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       time.Duration(getenvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		ApprovalCutoff: getenvInt("APPROVAL_CUTOFF", 40),
		SweepInterval:  time.Duration(getenvInt("SWEEP_INTERVAL_SECONDS", 3600)) * time.Second,

		MaxActiveLoans:    getenvInt("MAX_ACTIVE_LOANS", 5),
		MaxOutstandingUSD: getenvInt("MAX_BORROWER_OUTSTANDING_USD", 50000),
	}
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("missing PORT")
	}
	if _, err := net.LookupPort("tcp", c.Port); err != nil {
		return errors.New("invalid PORT " + strconv.Quote(c.Port))
	}
	if c.ApprovalCutoff < 0 || c.ApprovalCutoff > 100 {
		return errors.New("APPROVAL_CUTOFF must be within [0, 100]")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL_SECONDS must be positive")
	}
	if c.MaxActiveLoans < 1 {
		return errors.New("MAX_ACTIVE_LOANS must be at least 1")
	}
	if c.MaxOutstandingUSD < 1 {
		return errors.New("MAX_BORROWER_OUTSTANDING_USD must be positive")
	}
	return nil
}
