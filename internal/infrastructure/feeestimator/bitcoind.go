// Package feeestimator adapts bitcoind's smart-fee RPC to
// ports.FeeEstimator.
package feeestimator

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

// BitcoindClient wraps lnd's chainfee.Estimator backed by a bitcoind RPC
// connection, the same construction the teacher's ark-wallet bitcoind
// option wires up for its own fee estimator.
type BitcoindClient struct {
	estimator chainfee.Estimator
}

// New dials a bitcoind JSON-RPC endpoint over HTTP POST and starts a
// background estimator polling ECONOMICAL-mode smart fee estimates.
func New(host, user, pass string) (*BitcoindClient, error) {
	estimator, err := chainfee.NewBitcoindEstimator(
		rpcclient.ConnConfig{
			Host:         host,
			User:         user,
			Pass:         pass,
			HTTPPostMode: true,
			DisableTLS:   true,
		},
		"ECONOMICAL",
		chainfee.AbsoluteFeePerKwFloor,
	)
	if err != nil {
		return nil, fmt.Errorf("create bitcoind fee estimator: %w", err)
	}
	if err := estimator.Start(); err != nil {
		return nil, fmt.Errorf("start bitcoind fee estimator: %w", err)
	}
	return &BitcoindClient{estimator: estimator}, nil
}

// Shutdown stops the background estimator.
func (c *BitcoindClient) Shutdown() {
	_ = c.estimator.Stop()
}

// EstimateFeePerByte implements ports.FeeEstimator by asking for a
// next-block estimate and converting from sat/kweight to sat/byte.
func (c *BitcoindClient) EstimateFeePerByte(ctx context.Context) (btcutil.Amount, error) {
	rate, err := c.estimator.EstimateFeePerKW(1)
	if err != nil {
		return 0, fmt.Errorf("estimate fee per kw: %w", err)
	}
	return btcutil.Amount(rate.FeePerKVByte()) / 1000, nil
}
