// Package lending provides the HTTP handlers and business logic for
// registering collateral, quoting and originating loans, recording
// repayments, and assessing liquidation risk.
//
// All monetary values use shopspring/decimal — never float64 for money.
package lending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nearmint/lending-engine/internal/exposure"
	"github.com/nearmint/lending-engine/internal/gateway"
	"github.com/nearmint/lending-engine/internal/metrics"
	"github.com/nearmint/lending-engine/internal/model"
	"github.com/nearmint/lending-engine/internal/pricing"
	"github.com/nearmint/lending-engine/internal/risk"
	"github.com/nearmint/lending-engine/internal/store"
)

// DefaultApprovalCutoff is the minimum approval probability (percent) a
// quote must score for origination to proceed.
const DefaultApprovalCutoff = 40

// usdcContract is the settlement token contract the wallet service is asked
// to move funds through.
const usdcContract = "0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8"

// Service handles lending operations. Uses a mutex for serialized
// state-changing execution (single-instance). For horizontal scaling,
// replace with distributed locking or database-level optimistic concurrency.
type Service struct {
	store          store.Store
	wallet         gateway.Wallet
	profiles       gateway.ProfileStore
	content        gateway.ContentStore
	limiter        *exposure.Limiter // optional per-borrower exposure limits
	approvalCutoff int
	mu             sync.Mutex
	wsHub          *WSHub // optional WebSocket hub for real-time broadcasts
}

// NewService creates a new lending service. Pass nil for limiter or hub to
// disable exposure limits or WebSocket broadcasting; approvalCutoff <= 0
// selects the default.
func NewService(st store.Store, wallet gateway.Wallet, profiles gateway.ProfileStore, content gateway.ContentStore, limiter *exposure.Limiter, hub *WSHub, approvalCutoff int) *Service {
	if approvalCutoff <= 0 {
		approvalCutoff = DefaultApprovalCutoff
	}
	return &Service{
		store:          st,
		wallet:         wallet,
		profiles:       profiles,
		content:        content,
		limiter:        limiter,
		approvalCutoff: approvalCutoff,
		wsHub:          hub,
	}
}

// --- Request/Response types ---

// CreateCollateralRequest is the JSON body for collateral registration.
type CreateCollateralRequest struct {
	OwnerID   string          `json:"owner_id"`
	TokenID   string          `json:"token_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Valuation decimal.Decimal `json:"valuation"`
	ImageURL  string          `json:"image_url"`
}

// QuoteRequest is the JSON body for POST /quotes. Either collateral_id or
// the valuation/category pair identifies the collateral.
type QuoteRequest struct {
	CollateralID string          `json:"collateral_id,omitempty"`
	Valuation    decimal.Decimal `json:"valuation,omitempty"`
	Category     string          `json:"category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	TermDays     int             `json:"term_days"`
}

// OriginateRequest is the JSON body for POST /loans.
type OriginateRequest struct {
	BorrowerID   string          `json:"borrower_id"`
	CollateralID string          `json:"collateral_id"`
	Amount       decimal.Decimal `json:"amount"`
	TermDays     int             `json:"term_days"`
	WalletID     string          `json:"wallet_id"`
	Pin          string          `json:"pin"`
}

// OriginateResponse is returned from POST /loans.
type OriginateResponse struct {
	Loan  *model.Loan      `json:"loan"`
	Quote *model.LoanQuote `json:"quote"`
}

// RepaymentRequest is the JSON body for POST /loans/{loanID}/repayments.
type RepaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	WalletID string          `json:"wallet_id"`
	Pin      string          `json:"pin"`
}

// RepaymentResponse is returned after recording a repayment.
type RepaymentResponse struct {
	Repayment *model.Repayment `json:"repayment"`
	Loan      *model.Loan      `json:"loan"`
}

// UploadResponse is returned from POST /uploads.
type UploadResponse struct {
	ContentHash  string `json:"content_hash"`
	RetrievalURL string `json:"retrieval_url"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileType     string `json:"file_type"`
}

// --- HTTP Handlers ---

// CreateCollateral handles POST /api/v1/collateral
func (s *Service) CreateCollateral(w http.ResponseWriter, r *http.Request) {
	var req CreateCollateralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.OwnerID == "" {
		writeError(w, "owner_id is required", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	tokenID := req.TokenID
	if tokenID == "" {
		tokenID = uuid.New().String()
	}

	c := &model.Collateral{
		ID:      uuid.New().String(),
		OwnerID: req.OwnerID,
		TokenID: tokenID,
		Name:    req.Name,
		// Unknown categories get the "other" profile; valuations below the
		// floor are clamped up, never rejected.
		Category:  model.ParseCategory(req.Category),
		Valuation: decimal.Max(req.Valuation, pricing.MinValuation),
		Status:    model.CollateralAvailable,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateCollateral(r.Context(), c); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	s.mirrorProfile(r, c.OwnerID, c)

	slog.Info("collateral registered",
		"id", c.ID,
		"owner", c.OwnerID,
		"category", c.Category,
		"valuation", c.Valuation.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// GetCollateral handles GET /api/v1/collateral/{collateralID}
func (s *Service) GetCollateral(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collateralID")

	c, err := s.store.GetCollateral(r.Context(), id)
	if err != nil {
		writeError(w, "collateral not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// ListCollateral handles GET /api/v1/collateral?owner=<ownerID>
func (s *Service) ListCollateral(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, "owner query parameter is required", http.StatusBadRequest)
		return
	}

	items, err := s.store.ListCollateralByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, "failed to list collateral", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []model.Collateral{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// ComputeQuote handles POST /api/v1/quotes
// Pure passthrough to the pricing engine; safe to call on every slider tick.
func (s *Service) ComputeQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	valuation := req.Valuation
	category := model.ParseCategory(req.Category)

	if req.CollateralID != "" {
		c, err := s.store.GetCollateral(r.Context(), req.CollateralID)
		if err != nil {
			writeError(w, "collateral not found", http.StatusNotFound)
			return
		}
		valuation = c.Valuation
		category = c.Category
	}

	quote, err := pricing.Quote(valuation, category, req.Amount, req.TermDays)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.QuotesTotal.WithLabelValues(string(quote.RiskTier)).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

// OriginateLoan handles POST /api/v1/loans
// Quotes the request, applies the approval policy, disburses through the
// wallet service, and records the loan with the collateral marked pawned.
func (s *Service) OriginateLoan(w http.ResponseWriter, r *http.Request) {
	var req OriginateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.BorrowerID == "" {
		writeError(w, "borrower_id is required", http.StatusBadRequest)
		return
	}
	if req.WalletID == "" {
		writeError(w, "wallet_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Serialize loan state changes.
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetCollateral(ctx, req.CollateralID)
	if err != nil {
		writeError(w, "collateral not found: "+req.CollateralID, http.StatusNotFound)
		return
	}
	if c.Status != model.CollateralAvailable {
		writeError(w, "collateral is already pawned", http.StatusConflict)
		return
	}

	quote, err := pricing.Quote(c.Valuation, c.Category, req.Amount, req.TermDays)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Deterministic approval policy: the quote's approval score must clear
	// the configured cutoff.
	if quote.ApprovalProbability < s.approvalCutoff {
		metrics.LoansRejectedTotal.Inc()
		writeError(w, fmt.Sprintf("loan request rejected: approval probability %d%% below %d%% cutoff",
			quote.ApprovalProbability, s.approvalCutoff), http.StatusConflict)
		return
	}

	if s.limiter != nil {
		history, err := s.store.ListLoansByBorrower(ctx, req.BorrowerID)
		if err != nil {
			writeError(w, "failed to check borrower exposure", http.StatusInternalServerError)
			return
		}
		if err := s.limiter.Check(quote.TotalRepayment, history); err != nil {
			metrics.LoansRejectedTotal.Inc()
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
	}

	// Disburse. Wallet failures are surfaced verbatim and nothing is
	// persisted.
	txHash, err := s.wallet.Submit(ctx, req.WalletID, req.Pin, gateway.Call{
		ContractAddress: usdcContract,
		Entrypoint:      "transfer",
		Args:            []string{req.WalletID, quote.LoanAmount.String()},
	})
	if err != nil {
		writeError(w, "disbursement failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	now := time.Now().UTC()
	loan := &model.Loan{
		ID:              uuid.New().String(),
		BorrowerID:      req.BorrowerID,
		CollateralID:    c.ID,
		Principal:       quote.LoanAmount,
		InterestRate:    quote.InterestRate,
		TermDays:        quote.TermDays,
		DailyPayment:    quote.DailyPayment,
		RepaymentAmount: quote.TotalRepayment,
		// Threshold is fixed at origination; the risk monitor measures
		// against this value for the life of the loan.
		OutstandingBalance:   quote.TotalRepayment,
		LiquidationThreshold: quote.Valuation.Mul(pricing.MaxLoanRatio),
		RiskTier:             quote.RiskTier,
		ApprovalProbability:  quote.ApprovalProbability,
		Status:               model.LoanActive,
		TxHash:               txHash,
		OriginatedAt:         now,
		DueAt:                now.AddDate(0, 0, quote.TermDays),
	}

	if err := s.store.CreateLoan(ctx, loan); err != nil {
		writeError(w, "failed to record loan", http.StatusInternalServerError)
		return
	}
	if err := s.store.UpdateCollateralStatus(ctx, c.ID, model.CollateralPawned); err != nil {
		writeError(w, "failed to lock collateral", http.StatusInternalServerError)
		return
	}

	c.Status = model.CollateralPawned
	s.mirrorProfile(r, c.OwnerID, c)

	metrics.LoansOriginatedTotal.Inc()
	metrics.ActiveLoans.Inc()

	slog.Info("loan originated",
		"loan_id", loan.ID,
		"borrower", loan.BorrowerID,
		"collateral", loan.CollateralID,
		"principal", loan.Principal.String(),
		"rate", loan.InterestRate.String(),
		"term_days", loan.TermDays,
		"risk_tier", loan.RiskTier,
		"tx", txHash,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:         "loan_originated",
			LoanID:       loan.ID,
			BorrowerID:   loan.BorrowerID,
			CollateralID: loan.CollateralID,
			Status:       loan.Status,
			RiskTier:     string(loan.RiskTier),
			Amount:       loan.Principal.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(OriginateResponse{Loan: loan, Quote: quote})
}

// GetLoan handles GET /api/v1/loans/{loanID}
func (s *Service) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "loanID")

	loan, err := s.store.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, "loan not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loan)
}

// ListLoans handles GET /api/v1/loans?borrower=<borrowerID>
func (s *Service) ListLoans(w http.ResponseWriter, r *http.Request) {
	borrower := r.URL.Query().Get("borrower")
	if borrower == "" {
		writeError(w, "borrower query parameter is required", http.StatusBadRequest)
		return
	}

	loans, err := s.store.ListLoansByBorrower(r.Context(), borrower)
	if err != nil {
		writeError(w, "failed to list loans", http.StatusInternalServerError)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loans)
}

// RecordRepayment handles POST /api/v1/loans/{loanID}/repayments
// Appends an immutable ledger entry and reduces the outstanding balance;
// the loan completes and the collateral is released when it reaches zero.
func (s *Service) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	var req RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	if req.WalletID == "" {
		writeError(w, "wallet_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		writeError(w, "loan not found", http.StatusNotFound)
		return
	}
	if loan.Status != model.LoanActive {
		writeError(w, "loan is not active", http.StatusConflict)
		return
	}

	// Overpayments are clamped to the outstanding balance.
	amount := decimal.Min(req.Amount, loan.OutstandingBalance)

	txHash, err := s.wallet.Submit(ctx, req.WalletID, req.Pin, gateway.Call{
		ContractAddress: usdcContract,
		Entrypoint:      "transfer",
		Args:            []string{loan.ID, amount.String()},
	})
	if err != nil {
		writeError(w, "repayment transfer failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	entry := &model.Repayment{
		ID:         uuid.New().String(),
		LoanID:     loan.ID,
		BorrowerID: loan.BorrowerID,
		Amount:     amount,
		TxHash:     txHash,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.store.InsertRepayment(ctx, entry); err != nil {
		writeError(w, "failed to record repayment", http.StatusInternalServerError)
		return
	}

	loan.OutstandingBalance = loan.OutstandingBalance.Sub(amount)
	if !loan.OutstandingBalance.IsPositive() {
		loan.OutstandingBalance = decimal.Zero
		loan.Status = model.LoanCompleted
	}

	if err := s.store.UpdateLoanBalance(ctx, loan.ID, loan.OutstandingBalance, loan.Status); err != nil {
		writeError(w, "failed to update loan", http.StatusInternalServerError)
		return
	}

	if loan.Status == model.LoanCompleted {
		if err := s.store.UpdateCollateralStatus(ctx, loan.CollateralID, model.CollateralAvailable); err != nil {
			slog.Error("failed to release collateral", "collateral", loan.CollateralID, "err", err)
		}
		metrics.ActiveLoans.Dec()
	}

	metrics.RepaymentsTotal.Inc()

	slog.Info("repayment recorded",
		"loan_id", loan.ID,
		"amount", amount.String(),
		"outstanding", loan.OutstandingBalance.String(),
		"status", loan.Status,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:        "repayment_recorded",
			LoanID:      loan.ID,
			BorrowerID:  loan.BorrowerID,
			Status:      loan.Status,
			Amount:      amount.String(),
			Outstanding: loan.OutstandingBalance.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RepaymentResponse{Repayment: entry, Loan: loan})
}

// ListRepayments handles GET /api/v1/loans/{loanID}/repayments
func (s *Service) ListRepayments(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	entries, err := s.store.GetRepaymentsByLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, "failed to list repayments", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.Repayment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// AssessRisk handles GET /api/v1/loans/{loanID}/risk?valuation=<current>
// Computes a fresh liquidation risk assessment. The valuation parameter is
// the externally-supplied current collateral value; it defaults to the
// valuation on record.
func (s *Service) AssessRisk(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	loan, err := s.store.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, "loan not found", http.StatusNotFound)
		return
	}

	valuation := decimal.Zero
	if v := r.URL.Query().Get("valuation"); v != "" {
		valuation, err = decimal.NewFromString(v)
		if err != nil || !valuation.IsPositive() {
			writeError(w, "valuation must be a positive number", http.StatusBadRequest)
			return
		}
	} else {
		c, err := s.store.GetCollateral(r.Context(), loan.CollateralID)
		if err != nil {
			writeError(w, "collateral not found for loan", http.StatusInternalServerError)
			return
		}
		valuation = c.Valuation
	}

	assessment := risk.Assess(loan, valuation, time.Now().UTC())
	metrics.RiskAssessmentsTotal.WithLabelValues(string(assessment.RiskTier)).Inc()

	if assessment.RiskTier == model.RiskHigh && s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:       "risk_warning",
			LoanID:     loan.ID,
			BorrowerID: loan.BorrowerID,
			RiskTier:   string(assessment.RiskTier),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assessment)
}

// GetStats handles GET /api/v1/stats
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// UploadImage handles POST /api/v1/uploads
// Validates the collectible image against the content rules before any
// storage call, then pins it through the content store.
func (s *Service) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := gateway.ValidateContent(contentType, header.Size); err != nil {
		metrics.UploadsRejectedTotal.Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, gateway.MaxContentBytes+1))
	if err != nil {
		writeError(w, "failed to read upload", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > gateway.MaxContentBytes {
		metrics.UploadsRejectedTotal.Inc()
		writeError(w, gateway.ErrContentTooLarge.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.content.Put(r.Context(), data, header.Filename, contentType)
	if err != nil {
		if errors.Is(err, gateway.ErrContentType) || errors.Is(err, gateway.ErrContentTooLarge) {
			metrics.UploadsRejectedTotal.Inc()
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	slog.Info("image pinned", "hash", res.ContentHash, "size", len(data), "type", contentType)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		ContentHash:  res.ContentHash,
		RetrievalURL: res.RetrievalURL,
		FileName:     header.Filename,
		FileSize:     int64(len(data)),
		FileType:     contentType,
	})
}

// --- Liquidation sweep ---

// SweepLiquidations liquidates active loans that are overdue with a balance
// outstanding and classified high risk. The risk monitor only classifies;
// this sweep is the scheduler that acts on the classification. Returns the
// number of loans liquidated.
func (s *Service) SweepLiquidations(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.store.ListLoansByStatus(ctx, model.LoanActive)
	if err != nil {
		return 0, err
	}

	liquidated := 0
	for i := range active {
		loan := &active[i]

		// Use the recorded valuation; a missing collateral record is
		// treated as valued at the threshold itself.
		valuation := loan.LiquidationThreshold
		if c, err := s.store.GetCollateral(ctx, loan.CollateralID); err == nil {
			valuation = c.Valuation
		}

		assessment := risk.Assess(loan, valuation, now)
		if assessment.DaysRemaining > 0 || assessment.RiskTier != model.RiskHigh ||
			!loan.OutstandingBalance.IsPositive() {
			continue
		}

		if err := s.store.UpdateLoanBalance(ctx, loan.ID, loan.OutstandingBalance, model.LoanLiquidated); err != nil {
			slog.Error("failed to liquidate loan", "loan_id", loan.ID, "err", err)
			continue
		}

		liquidated++
		metrics.LiquidationsTotal.Inc()
		metrics.ActiveLoans.Dec()

		slog.Warn("loan liquidated",
			"loan_id", loan.ID,
			"borrower", loan.BorrowerID,
			"outstanding", loan.OutstandingBalance.String(),
			"due_at", loan.DueAt,
		)

		if s.wsHub != nil {
			s.wsHub.Broadcast(WSMessage{
				Type:         "loan_liquidated",
				LoanID:       loan.ID,
				BorrowerID:   loan.BorrowerID,
				CollateralID: loan.CollateralID,
				Status:       model.LoanLiquidated,
			})
		}
	}

	return liquidated, nil
}

// mirrorProfile best-effort copies collateral state into the external user
// profile bag. Failures are logged, never fatal.
func (s *Service) mirrorProfile(r *http.Request, userID string, c *model.Collateral) {
	if s.profiles == nil {
		return
	}
	ctx := r.Context()

	attrs, err := s.profiles.Get(ctx, userID)
	if err != nil {
		slog.Warn("profile read failed", "user", userID, "err", err)
		return
	}
	attrs["collateral:"+c.ID] = map[string]any{
		"token_id": c.TokenID,
		"name":     c.Name,
		"category": string(c.Category),
		"status":   c.Status,
	}
	if err := s.profiles.Set(ctx, userID, attrs); err != nil {
		slog.Warn("profile write failed", "user", userID, "err", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
