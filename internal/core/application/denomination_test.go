package application

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/config"
	"github.com/chaumian/coordinator/internal/core/ports"
)

type fakeRateProvider struct {
	rates []ports.ExchangeRate
	err   error
}

func (f *fakeRateProvider) GetExchangeRates(ctx context.Context) ([]ports.ExchangeRate, error) {
	return f.rates, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		DenominationAlgorithm: config.FixedBtc,
		DenominationBtc:       1_000_000,
		DenominationUsd:       10,
	}
}

func TestDenominationCalculatorFixedBtc(t *testing.T) {
	cfg := testConfig()
	calc := newDenominationCalculator(&fakeRateProvider{}, logrus.StandardLogger())

	amt, err := calc.Compute(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, cfg.DenominationBtc, amt)
}

func TestDenominationCalculatorFixedUsd(t *testing.T) {
	cfg := testConfig()
	cfg.DenominationAlgorithm = config.FixedUsd
	cfg.DenominationUsd = 100
	provider := &fakeRateProvider{rates: []ports.ExchangeRate{{Code: "USD", Rate: 50_000}}}
	calc := newDenominationCalculator(provider, logrus.StandardLogger())

	amt, err := calc.Compute(context.Background(), cfg, nil)
	require.NoError(t, err)

	expected, err := btcutil.NewAmount(100.0 / 50_000)
	require.NoError(t, err)
	require.Equal(t, expected, amt)
}

func TestDenominationCalculatorFixedUsdFallsBackWithNoPrior(t *testing.T) {
	cfg := testConfig()
	cfg.DenominationAlgorithm = config.FixedUsd
	provider := &fakeRateProvider{err: errors.New("provider down")}
	calc := newDenominationCalculator(provider, logrus.StandardLogger())

	amt, err := calc.Compute(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, cfg.DenominationBtc, amt)
}

func TestDenominationCalculatorFixedUsdFallsBackToPrior(t *testing.T) {
	cfg := testConfig()
	cfg.DenominationAlgorithm = config.FixedUsd
	provider := &fakeRateProvider{err: errors.New("provider down")}
	calc := newDenominationCalculator(provider, logrus.StandardLogger())

	prior := btcutil.Amount(42)
	amt, err := calc.Compute(context.Background(), cfg, &prior)
	require.NoError(t, err)
	require.Equal(t, prior, amt)
}

func TestDenominationCalculatorUnrecognizedAlgorithm(t *testing.T) {
	cfg := testConfig()
	cfg.DenominationAlgorithm = "bogus"
	calc := newDenominationCalculator(&fakeRateProvider{}, logrus.StandardLogger())

	_, err := calc.Compute(context.Background(), cfg, nil)
	require.Error(t, err)
}
