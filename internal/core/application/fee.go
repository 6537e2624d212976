package application

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/input"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
	"github.com/sirupsen/logrus"

	"github.com/chaumian/coordinator/internal/config"
	"github.com/chaumian/coordinator/internal/core/domain"
	"github.com/chaumian/coordinator/internal/core/ports"
)

// roundFees bundles the per-input and per-output fee computed for one
// round, so the scheduler can retain them verbatim on estimator failure.
type roundFees struct {
	PerInput  btcutil.Amount
	PerOutput btcutil.Amount
}

// feeCalculator derives fee_per_input and fee_per_output from the
// Bitcoin node's smart-fee estimate, grounded on §4.4.
type feeCalculator struct {
	estimator ports.FeeEstimator
	log       logrus.FieldLogger
}

func newFeeCalculator(estimator ports.FeeEstimator, log logrus.FieldLogger) *feeCalculator {
	return &feeCalculator{estimator: estimator, log: log}
}

// Compute returns the fees for the round about to start. previous is the
// fee bundle of the last round that computed one successfully, or nil.
func (c *feeCalculator) Compute(ctx context.Context, cfg *config.Config, previous *roundFees) (roundFees, error) {
	feePerByte, err := c.estimator.EstimateFeePerByte(ctx)
	if err != nil {
		err = domain.ErrExternalUnavailable{Source: "fee_estimator", Err: err}
		c.log.WithError(err).Warn("fee estimator unavailable, falling back")
		if previous != nil {
			return *previous, nil
		}
		feePerByte = btcutil.Amount(cfg.FallbackSatPerByte)
	}

	rate := chainfee.SatPerKVByte(int64(feePerByte) * 1000)

	var p2wpkhInput, p2pkhInput, p2wpkhOutput, empty input.TxWeightEstimator
	p2wpkhInput.AddP2WKHInput()
	p2pkhInput.AddP2PKHInput()
	p2wpkhOutput.AddP2WKHOutput()

	// Each estimator sizes a whole transaction, so the empty transaction's
	// size is subtracted to leave the size of the input or output alone.
	overhead := empty.VSize()
	p2wpkhInputSize := p2wpkhInput.VSize() - overhead
	p2pkhInputSize := p2pkhInput.VSize() - overhead

	// input_vsize = ceil((3 * p2wpkh_input_size + p2pkh_input_size) / 4),
	// a conservative blend that doesn't commit to either input type.
	inputVSize := lntypes.VByte((3*p2wpkhInputSize + p2pkhInputSize + 3) / 4)
	outputVSize := lntypes.VByte(p2wpkhOutput.VSize() - overhead)

	return roundFees{
		PerInput:  rate.FeeForVSize(inputVSize),
		PerOutput: rate.FeeForVSize(outputVSize),
	}, nil
}
