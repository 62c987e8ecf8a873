package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/config"
	"github.com/nearmint/lending-engine/internal/exposure"
	"github.com/nearmint/lending-engine/internal/gateway"
	"github.com/nearmint/lending-engine/internal/lending"
	"github.com/nearmint/lending-engine/internal/metrics"
	"github.com/nearmint/lending-engine/internal/model"
	"github.com/nearmint/lending-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.RedisURL != "" {
			opt, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
			slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// Reconcile the active-loans gauge after a restart.
	if loans, err := st.ListLoansByStatus(context.Background(), model.LoanActive); err == nil {
		metrics.ActiveLoans.Set(float64(len(loans)))
	}

	// --- Gateways ---
	// Simulated wallet, profile, and content gateways. Swap for the real
	// custodial wallet and pinning service clients in production.
	wallet := gateway.SimWallet{}
	profiles := gateway.NewMemProfileStore()
	content := gateway.NewMemContentStore()

	// --- Exposure limits ---
	limiter := exposure.NewLimiter(cfg.MaxActiveLoans, decimal.NewFromInt(int64(cfg.MaxOutstandingUSD)))

	// --- WebSocket hub ---
	wsHub := lending.NewWSHub()
	go wsHub.Run()

	// --- Lending service ---
	svc := lending.NewService(st, wallet, profiles, content, limiter, wsHub, cfg.ApprovalCutoff)

	// --- Liquidation sweep ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case now := <-ticker.C:
				n, err := svc.SweepLiquidations(sweepCtx, now.UTC())
				if err != nil {
					slog.Error("liquidation sweep failed", "err", err)
					continue
				}
				if n > 0 {
					slog.Info("liquidation sweep complete", "liquidated", n)
				}
			}
		}
	}()

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"lending-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time loan events.
		r.Get("/ws", wsHub.HandleWS)

		// Collateral management.
		r.Post("/collateral", svc.CreateCollateral)
		r.Get("/collateral", svc.ListCollateral)
		r.Get("/collateral/{collateralID}", svc.GetCollateral)

		// Pricing.
		r.Post("/quotes", svc.ComputeQuote)

		// Loan lifecycle.
		r.Post("/loans", svc.OriginateLoan)
		r.Get("/loans", svc.ListLoans)
		r.Get("/loans/{loanID}", svc.GetLoan)
		r.Post("/loans/{loanID}/repayments", svc.RecordRepayment)
		r.Get("/loans/{loanID}/repayments", svc.ListRepayments)
		r.Get("/loans/{loanID}/risk", svc.AssessRisk)

		// Platform stats and image uploads.
		r.Get("/stats", svc.GetStats)
		r.Post("/uploads", svc.UploadImage)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("lending-engine listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down lending-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("lending-engine stopped")
}
