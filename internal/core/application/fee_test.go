package application

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/config"
)

type fakeFeeEstimator struct {
	feePerByte btcutil.Amount
	err        error
}

func (f *fakeFeeEstimator) EstimateFeePerByte(ctx context.Context) (btcutil.Amount, error) {
	return f.feePerByte, f.err
}

func TestFeeCalculatorComputesPositiveFees(t *testing.T) {
	cfg := &config.Config{FallbackSatPerByte: 2}
	calc := newFeeCalculator(&fakeFeeEstimator{feePerByte: 5}, logrus.StandardLogger())

	fees, err := calc.Compute(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Positive(t, fees.PerInput)
	require.Positive(t, fees.PerOutput)
	require.Greater(t, fees.PerInput, fees.PerOutput)
}

func TestFeeCalculatorFallsBackToConfigWithNoPrior(t *testing.T) {
	cfg := &config.Config{FallbackSatPerByte: 3}
	calc := newFeeCalculator(&fakeFeeEstimator{err: errors.New("rpc down")}, logrus.StandardLogger())

	fees, err := calc.Compute(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Positive(t, fees.PerInput)
}

func TestFeeCalculatorFallsBackToPrior(t *testing.T) {
	cfg := &config.Config{FallbackSatPerByte: 3}
	calc := newFeeCalculator(&fakeFeeEstimator{err: errors.New("rpc down")}, logrus.StandardLogger())

	prior := roundFees{PerInput: 111, PerOutput: 42}
	fees, err := calc.Compute(context.Background(), cfg, &prior)
	require.NoError(t, err)
	require.Equal(t, prior, fees)
}
