package ports

import "context"

// ExchangeRate is one currency's price against BTC, as reported by the
// exchange-rate provider.
type ExchangeRate struct {
	Code string
	Rate float64
}

// ExchangeRateProvider is the coordinator's view of the exchange-rate
// feed: a single async call, cancellable via ctx.
type ExchangeRateProvider interface {
	GetExchangeRates(ctx context.Context) ([]ExchangeRate, error)
}
