// Package exchangerate adapts an HTTP price feed to
// ports.ExchangeRateProvider.
package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/chaumian/coordinator/internal/core/ports"
)

// HTTPClient issues a GET against the "rates" path under url and decodes a JSON array of
// {code, rate} objects, grounded on the teacher's esploraClient.
type HTTPClient struct {
	url string
}

// New builds an HTTPClient against the given base URL.
func New(baseURL string) *HTTPClient {
	return &HTTPClient{url: baseURL}
}

type rateEntry struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
}

// GetExchangeRates implements ports.ExchangeRateProvider.
func (c *HTTPClient) GetExchangeRates(ctx context.Context) ([]ports.ExchangeRate, error) {
	endpoint, err := url.JoinPath(c.url, "rates")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("exchange rate endpoint HTTP error: " + resp.Status)
	}

	var entries []rateEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	rates := make([]ports.ExchangeRate, 0, len(entries))
	for _, e := range entries {
		rates = append(rates, ports.ExchangeRate{Code: e.Code, Rate: e.Rate})
	}
	return rates, nil
}
