// Package gateway defines the boundary contracts for the externally-owned
// services the lending engine talks to: the wallet/transaction service that
// signs and broadcasts on-chain calls, the user-profile store that holds an
// opaque per-user attribute bag, and the content-addressed store that pins
// collectible images.
//
// The engine never implements these vendors itself. The in-memory
// implementations here are development and test stand-ins wired by
// cmd/server when no real backend is configured, mirroring the store
// package's memory fallback.
package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrContentType is returned for uploads outside the image allow-list.
	ErrContentType = errors.New("gateway: unsupported content type")

	// ErrContentTooLarge is returned for uploads above MaxContentBytes.
	ErrContentTooLarge = errors.New("gateway: content exceeds maximum size")
)

// MaxContentBytes is the upload size ceiling (10 MB).
const MaxContentBytes int64 = 10 * 1024 * 1024

// allowedContentTypes is the image allow-list enforced before any upload
// attempt reaches the content store.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateContent checks an upload's declared content type and size against
// the intake rules. Violations are rejected before any storage call.
func ValidateContent(contentType string, size int64) error {
	if !allowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s (only JPEG, PNG, GIF, and WebP are allowed)", ErrContentType, contentType)
	}
	if size > MaxContentBytes {
		return fmt.Errorf("%w: %d bytes (maximum is %d)", ErrContentTooLarge, size, MaxContentBytes)
	}
	return nil
}

// Call describes a contract invocation for the wallet service to sign and
// broadcast.
type Call struct {
	ContractAddress string
	Entrypoint      string
	Args            []string
}

// Wallet is the external wallet/transaction service. Submit signs and
// broadcasts a call on behalf of walletID, authorized by secret, and returns
// the transaction hash. Failures (insufficient funds, rejected by user,
// network error) surface as opaque errors.
type Wallet interface {
	Submit(ctx context.Context, walletID, secret string, call Call) (txHash string, err error)
}

// ProfileStore is the external user directory. Each user has an opaque
// attribute bag; no schema is enforced by the store.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (map[string]any, error)
	Set(ctx context.Context, userID string, attrs map[string]any) error
}

// PutResult is the outcome of pinning content.
type PutResult struct {
	ContentHash  string `json:"content_hash"`
	RetrievalURL string `json:"retrieval_url"`
}

// ContentStore is the external content-addressed store (IPFS pinning).
type ContentStore interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (*PutResult, error)
}

// --- Development stand-ins ---

// SimWallet is a local wallet simulator: every call succeeds and returns a
// unique synthetic transaction hash. Used when no wallet backend is
// configured.
type SimWallet struct{}

func (SimWallet) Submit(_ context.Context, walletID, _ string, _ Call) (string, error) {
	if walletID == "" {
		return "", errors.New("gateway: wallet id is required")
	}
	id := uuid.New()
	sum := sha256.Sum256(id[:])
	return "0x" + hex.EncodeToString(sum[:]), nil
}

// MemProfileStore implements ProfileStore with an in-memory map.
type MemProfileStore struct {
	mu    sync.RWMutex
	users map[string]map[string]any
}

// NewMemProfileStore creates an empty in-memory profile store.
func NewMemProfileStore() *MemProfileStore {
	return &MemProfileStore{users: make(map[string]map[string]any)}
}

func (s *MemProfileStore) Get(_ context.Context, userID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attrs := make(map[string]any, len(s.users[userID]))
	for k, v := range s.users[userID] {
		attrs[k] = v
	}
	return attrs, nil
}

func (s *MemProfileStore) Set(_ context.Context, userID string, attrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	s.users[userID] = copied
	return nil
}

// MemContentStore is an in-memory content-addressed store: the hash is the
// SHA-256 of the bytes, the retrieval URL a synthetic gateway path.
type MemContentStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemContentStore creates an empty in-memory content store.
func NewMemContentStore() *MemContentStore {
	return &MemContentStore{blobs: make(map[string][]byte)}
}

func (s *MemContentStore) Put(_ context.Context, data []byte, _, contentType string) (*PutResult, error) {
	if err := ValidateContent(contentType, int64(len(data))); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	s.blobs[hash] = data
	s.mu.Unlock()

	return &PutResult{
		ContentHash:  hash,
		RetrievalURL: "https://gateway.nearmint.dev/content/" + hash,
	}, nil
}

// Get returns previously stored bytes by hash. Test helper.
func (s *MemContentStore) Get(hash string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	return data, ok
}
