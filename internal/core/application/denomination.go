package application

import (
	"context"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/sirupsen/logrus"

	"github.com/chaumian/coordinator/internal/config"
	"github.com/chaumian/coordinator/internal/core/domain"
	"github.com/chaumian/coordinator/internal/core/ports"
)

// denominationCalculator picks the denomination for a new round per
// cfg.DenominationAlgorithm, grounded on §4.3.
type denominationCalculator struct {
	rates ports.ExchangeRateProvider
	log   logrus.FieldLogger
}

func newDenominationCalculator(rates ports.ExchangeRateProvider, log logrus.FieldLogger) *denominationCalculator {
	return &denominationCalculator{rates: rates, log: log}
}

// Compute returns the denomination for the round about to start.
// previous is the denomination of the last round that successfully
// computed one, or nil if there has never been one.
func (c *denominationCalculator) Compute(ctx context.Context, cfg *config.Config, previous *btcutil.Amount) (btcutil.Amount, error) {
	switch cfg.DenominationAlgorithm {
	case config.FixedBtc:
		return cfg.DenominationBtc, nil
	case config.FixedUsd:
		return c.computeFixedUsd(ctx, cfg, previous)
	default:
		return 0, domain.ErrValidation{Reason: "unrecognized denomination algorithm"}
	}
}

func (c *denominationCalculator) computeFixedUsd(ctx context.Context, cfg *config.Config, previous *btcutil.Amount) (btcutil.Amount, error) {
	rates, err := c.rates.GetExchangeRates(ctx)
	if err != nil {
		err = domain.ErrExternalUnavailable{Source: "exchange_rate_provider", Err: err}
		c.log.WithError(err).Warn("exchange rate provider unavailable, falling back")
		if previous != nil {
			return *previous, nil
		}
		return cfg.DenominationBtc, nil
	}

	var usdRate float64
	found := false
	for _, r := range rates {
		if r.Code == "USD" {
			usdRate = r.Rate
			found = true
			break
		}
	}
	if !found || usdRate <= 0 {
		c.log.Warn("exchange rate provider returned no USD rate, falling back")
		if previous != nil {
			return *previous, nil
		}
		return cfg.DenominationBtc, nil
	}

	btcAmount := cfg.DenominationUsd / usdRate
	for k := 1; k <= 8; k++ {
		scale := math.Pow(10, float64(k))
		rounded := math.Round(btcAmount*scale) / scale
		if rounded > 0 {
			amt, err := btcutil.NewAmount(rounded)
			if err != nil {
				return 0, domain.ErrValidation{Reason: err.Error()}
			}
			return amt, nil
		}
	}
	return 0, domain.ErrValidation{Reason: "denomination_usd rounds to zero at every precision up to 8"}
}
