// Package noderegistry resolves public display metadata for approved network
// nodes, keyed by normalized account address. Resolution fails open: a missing
// record or a storage failure degrades to a fixed placeholder instead of an
// error, so the node-details endpoint always has something displayable.
package noderegistry

import (
	"context"
	"log/slog"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

// Placeholder is served in both fields whenever no approved record can be
// read. The frontend treats it as a "pending" signal.
const Placeholder = "Hold on there"

// StatusApproved marks records visible to this resolver. Records in any other
// state are owned by the upstream approval workflow and treated as absent.
const StatusApproved = "approved"

// NodeDetails is the public-facing metadata for a registered node.
type NodeDetails struct {
	FriendlyName string `json:"friendly_name"`
	Country      string `json:"country"`
}

// FallbackDetails returns the placeholder pair.
func FallbackDetails() NodeDetails {
	return NodeDetails{FriendlyName: Placeholder, Country: Placeholder}
}

// Source reports where a resolution came from, making the fail-open policy a
// visible part of the contract rather than a silent catch-all.
type Source int

const (
	SourceRegistry Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceRegistry {
		return "registry"
	}
	return "fallback"
}

// Result is the outcome of a resolution. Details is always populated.
type Result struct {
	Details NodeDetails
	Source  Source
}

// Store looks up approved-node records in the persisted registry.
type Store interface {
	// FindApproved returns the record for address with approved status.
	// The bool reports whether such a record exists.
	FindApproved(ctx context.Context, address addr.Normalized) (NodeDetails, bool, error)
}

// Resolver maps store lookups to the fail-open resolution contract.
type Resolver struct {
	store Store
	log   *slog.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, log: log}
}

// Resolve never fails: a storage error is logged and absorbed, and both the
// error and the not-found case resolve to the placeholder pair.
func (r *Resolver) Resolve(ctx context.Context, account addr.Normalized) Result {
	details, found, err := r.store.FindApproved(ctx, account)
	if err != nil {
		r.log.Error("node lookup failed, serving placeholder",
			"address", account.String(), "error", err)
		return Result{Details: FallbackDetails(), Source: SourceFallback}
	}
	if !found {
		return Result{Details: FallbackDetails(), Source: SourceFallback}
	}
	return Result{Details: details, Source: SourceRegistry}
}
