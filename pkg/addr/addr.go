// Package addr canonicalizes externally supplied account addresses into the
// form used as the lookup and comparison key by the entitlement and registry
// layers.
package addr

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrEmpty     = errors.New("address is required")
	ErrMalformed = errors.New("not a valid hex address")
)

// Normalized is a lowercase, 0x-prefixed account address. All downstream
// lookups and comparisons key on this form.
type Normalized string

// Normalize validates raw and folds it to the canonical lowercase form.
// Input must be 20-byte hex, with or without the 0x prefix.
func Normalize(raw string) (Normalized, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmpty
	}
	if !common.IsHexAddress(trimmed) {
		return "", ErrMalformed
	}
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		trimmed = "0x" + trimmed
	}
	return Normalized(strings.ToLower(trimmed)), nil
}

// Address converts the normalized form to a common.Address for contract calls.
func (n Normalized) Address() common.Address {
	return common.HexToAddress(string(n))
}

func (n Normalized) String() string {
	return string(n)
}
