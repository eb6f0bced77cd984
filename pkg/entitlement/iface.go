package entitlement

import (
	"context"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

// SubscriptionChecker answers whether an account currently holds an active
// subscription. Implemented by Checker.
type SubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, account addr.Normalized) (bool, error)
	Close()
}
