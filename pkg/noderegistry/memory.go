package noderegistry

import (
	"context"
	"strings"
	"sync"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

// Record is one row of the node registry as the approval workflow stores it.
type Record struct {
	Address      string
	FriendlyName string
	Country      string
	Status       string
}

// MemoryStore is an in-memory Store for tests and local development. It
// applies the same matching discipline as the Postgres store: the address
// column is compared case-insensitively, only approved rows are visible, and
// the first match wins when the key is duplicated.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates a store seeded with the given records.
func NewMemoryStore(records ...Record) *MemoryStore {
	return &MemoryStore{records: records}
}

// Add appends a record.
func (m *MemoryStore) Add(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

// FindApproved returns the first record whose address matches ignoring case
// and whose status is approved. Rows in any other status are invisible.
func (m *MemoryStore) FindApproved(ctx context.Context, address addr.Normalized) (NodeDetails, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.Status != StatusApproved {
			continue
		}
		if !strings.EqualFold(rec.Address, address.String()) {
			continue
		}
		return NodeDetails{FriendlyName: rec.FriendlyName, Country: rec.Country}, true, nil
	}
	return NodeDetails{}, false, nil
}
