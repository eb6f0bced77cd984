package noderegistry

import (
	"context"
	"testing"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

const memTestAccount = addr.Normalized("0x1234567890abcdef1234567890abcdef12345678")

func TestMemoryStoreFindApproved(t *testing.T) {
	store := NewMemoryStore(
		Record{Address: "0x1234567890abcdef1234567890abcdef12345678", FriendlyName: "Alpha", Country: "DE", Status: StatusApproved},
	)

	details, found, err := store.FindApproved(context.Background(), memTestAccount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if details.FriendlyName != "Alpha" || details.Country != "DE" {
		t.Errorf("details = %+v, want Alpha/DE", details)
	}
}

func TestMemoryStoreNonApprovedStatusIsAbsent(t *testing.T) {
	for _, status := range []string{"pending", "rejected", "revoked", ""} {
		store := NewMemoryStore(
			Record{Address: string(memTestAccount), FriendlyName: "Alpha", Country: "DE", Status: status},
		)

		_, found, err := store.FindApproved(context.Background(), memTestAccount)
		if err != nil {
			t.Fatalf("status %q: unexpected error: %v", status, err)
		}
		if found {
			t.Errorf("status %q: record visible, want treated as absent", status)
		}

		// End to end through the resolver the row degrades to the placeholder.
		result := NewResolver(store, discardLogger()).Resolve(context.Background(), memTestAccount)
		if result.Source != SourceFallback || result.Details != FallbackDetails() {
			t.Errorf("status %q: resolved %+v from %v, want placeholder fallback", status, result.Details, result.Source)
		}
	}
}

func TestMemoryStoreCaseInsensitiveAddress(t *testing.T) {
	store := NewMemoryStore(
		Record{Address: "0x1234567890ABCDEF1234567890ABCDEF12345678", FriendlyName: "Alpha", Country: "DE", Status: StatusApproved},
	)

	_, found, err := store.FindApproved(context.Background(), memTestAccount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("mixed-case stored address must match the normalized key")
	}
}

func TestMemoryStoreDuplicateKeyIsDeterministic(t *testing.T) {
	store := NewMemoryStore(
		Record{Address: string(memTestAccount), FriendlyName: "Alpha", Country: "DE", Status: StatusApproved},
		Record{Address: string(memTestAccount), FriendlyName: "Beta", Country: "FR", Status: StatusApproved},
	)

	for i := 0; i < 3; i++ {
		details, found, err := store.FindApproved(context.Background(), memTestAccount)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if !found {
			t.Fatalf("call %d: expected record to be found", i)
		}
		if details.FriendlyName != "Alpha" {
			t.Errorf("call %d: got %q, want first matching row every time", i, details.FriendlyName)
		}
	}
}

func TestMemoryStoreSkipsNonApprovedDuplicates(t *testing.T) {
	store := NewMemoryStore(
		Record{Address: string(memTestAccount), FriendlyName: "Old", Country: "US", Status: "revoked"},
		Record{Address: string(memTestAccount), FriendlyName: "Alpha", Country: "DE", Status: StatusApproved},
	)

	details, found, err := store.FindApproved(context.Background(), memTestAccount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected the approved row to be found")
	}
	if details.FriendlyName != "Alpha" {
		t.Errorf("got %q, want the approved row, not the revoked one", details.FriendlyName)
	}
}
