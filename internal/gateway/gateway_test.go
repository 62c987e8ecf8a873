package gateway

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// --- Upload validation ---

func TestValidateContent_AllowedTypes(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if err := ValidateContent(ct, 1024); err != nil {
			t.Errorf("%s should be allowed, got %v", ct, err)
		}
	}
}

func TestValidateContent_RejectsDisallowedType(t *testing.T) {
	err := ValidateContent("application/pdf", 1024)
	if !errors.Is(err, ErrContentType) {
		t.Errorf("expected ErrContentType, got %v", err)
	}
}

func TestValidateContent_RejectsOversize(t *testing.T) {
	err := ValidateContent("image/png", MaxContentBytes+1)
	if !errors.Is(err, ErrContentTooLarge) {
		t.Errorf("expected ErrContentTooLarge, got %v", err)
	}
	if err := ValidateContent("image/png", MaxContentBytes); err != nil {
		t.Errorf("exactly the ceiling should pass, got %v", err)
	}
}

// --- SimWallet ---

func TestSimWallet_ReturnsTxHash(t *testing.T) {
	var w SimWallet
	hash, err := w.Submit(context.Background(), "wallet-1", "1234", Call{
		ContractAddress: "0xabc",
		Entrypoint:      "transfer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		t.Errorf("expected 0x-prefixed 64-hex hash, got %q", hash)
	}

	again, _ := w.Submit(context.Background(), "wallet-1", "1234", Call{})
	if again == hash {
		t.Error("transaction hashes should be unique per submission")
	}
}

func TestSimWallet_RequiresWalletID(t *testing.T) {
	var w SimWallet
	if _, err := w.Submit(context.Background(), "", "1234", Call{}); err == nil {
		t.Error("expected error for empty wallet id")
	}
}

// --- MemProfileStore ---

func TestMemProfileStore_RoundTrip(t *testing.T) {
	s := NewMemProfileStore()
	ctx := context.Background()

	if err := s.Set(ctx, "user-1", map[string]any{"collateral_count": 2}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	attrs, err := s.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if attrs["collateral_count"] != 2 {
		t.Errorf("expected collateral_count=2, got %v", attrs["collateral_count"])
	}

	// Mutating the returned bag must not affect the store.
	attrs["collateral_count"] = 99
	again, _ := s.Get(ctx, "user-1")
	if again["collateral_count"] != 2 {
		t.Error("returned bag should be a copy")
	}
}

func TestMemProfileStore_UnknownUserEmptyBag(t *testing.T) {
	s := NewMemProfileStore()
	attrs, err := s.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attrs) != 0 {
		t.Errorf("expected empty bag, got %v", attrs)
	}
}

// --- MemContentStore ---

func TestMemContentStore_PutIsContentAddressed(t *testing.T) {
	s := NewMemContentStore()
	data := []byte("card front scan")

	res, err := s.Put(context.Background(), data, "card.png", "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ContentHash == "" || !strings.Contains(res.RetrievalURL, res.ContentHash) {
		t.Errorf("retrieval URL should embed the content hash: %+v", res)
	}

	stored, ok := s.Get(res.ContentHash)
	if !ok || !bytes.Equal(stored, data) {
		t.Error("stored bytes should round-trip by hash")
	}

	// Same bytes, same address.
	res2, _ := s.Put(context.Background(), data, "other-name.png", "image/png")
	if res2.ContentHash != res.ContentHash {
		t.Error("identical content should hash to the same address")
	}
}

func TestMemContentStore_RejectsInvalidContent(t *testing.T) {
	s := NewMemContentStore()
	if _, err := s.Put(context.Background(), []byte("%PDF-1.4"), "doc.pdf", "application/pdf"); !errors.Is(err, ErrContentType) {
		t.Errorf("expected ErrContentType, got %v", err)
	}
}
