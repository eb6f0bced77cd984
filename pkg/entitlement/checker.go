// Package entitlement performs the on-chain subscription check against the
// SubscriptionManager contract.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

var (
	// ErrUpstreamUnavailable indicates the RPC endpoint could not be reached
	// or failed at the transport level.
	ErrUpstreamUnavailable = errors.New("ethereum endpoint unavailable")

	// ErrContractCall indicates the call reverted, was rejected by the node,
	// or returned a result that could not be decoded.
	ErrContractCall = errors.New("contract call failed")
)

const methodHasActiveSubscription = "hasActiveSubscription"

// SubscriptionManager.hasActiveSubscription(address) returns bool
const subscriptionABIJSON = `[{
	"inputs": [{"name": "user", "type": "address"}],
	"name": "hasActiveSubscription",
	"outputs": [{"name": "", "type": "bool"}],
	"stateMutability": "view",
	"type": "function"
}]`

// Checker queries the subscription contract for an account's entitlement.
// Every call is a fresh round trip: no cache, no retry.
type Checker struct {
	caller       ethereum.ContractCaller
	contractAddr common.Address
	subABI       abi.ABI
	callTimeout  time.Duration
	close        func()
}

// New creates a checker connected to an Ethereum RPC endpoint. callTimeout
// bounds each round trip; zero disables the bound.
func New(rpcURL, contractAddress string, callTimeout time.Duration) (*Checker, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to Ethereum RPC: %w", err)
	}

	c, err := NewWithCaller(client, contractAddress, callTimeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.close = client.Close
	return c, nil
}

// NewWithCaller creates a checker over an existing contract caller. The
// caller's lifecycle stays with the caller of this function; Close is a no-op.
func NewWithCaller(caller ethereum.ContractCaller, contractAddress string, callTimeout time.Duration) (*Checker, error) {
	parsed, err := abi.JSON(strings.NewReader(subscriptionABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing subscription ABI: %w", err)
	}

	return &Checker{
		caller:       caller,
		contractAddr: common.HexToAddress(contractAddress),
		subABI:       parsed,
		callTimeout:  callTimeout,
	}, nil
}

// HasActiveSubscription calls hasActiveSubscription(account) on the contract.
// Any failure to obtain a definitive answer is an error, never a false.
func (c *Checker) HasActiveSubscription(ctx context.Context, account addr.Normalized) (bool, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	callData, err := c.subABI.Pack(methodHasActiveSubscription, account.Address())
	if err != nil {
		return false, fmt.Errorf("%w: packing call data: %v", ErrContractCall, err)
	}

	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contractAddr,
		Data: callData,
	}, nil)
	if err != nil {
		// A JSON-RPC level error means the node answered but the call was
		// rejected or reverted; anything else is a transport failure.
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return false, fmt.Errorf("%w: %v", ErrContractCall, err)
		}
		return false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	results, err := c.subABI.Unpack(methodHasActiveSubscription, output)
	if err != nil {
		return false, fmt.Errorf("%w: unpacking response: %v", ErrContractCall, err)
	}
	if len(results) != 1 {
		return false, fmt.Errorf("%w: expected 1 return value, got %d", ErrContractCall, len(results))
	}
	active, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: unexpected type for result: %T", ErrContractCall, results[0])
	}

	return active, nil
}

// Close shuts down the underlying RPC client, if owned by this checker.
func (c *Checker) Close() {
	if c.close != nil {
		c.close()
	}
}
