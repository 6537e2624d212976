package ports

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
)

// FeeEstimator is the coordinator's view of the Bitcoin node's smart-fee
// RPC: a single async call, cancellable via ctx, returning a fee rate in
// satoshis per byte.
type FeeEstimator interface {
	EstimateFeePerByte(ctx context.Context) (btcutil.Amount, error)
}
