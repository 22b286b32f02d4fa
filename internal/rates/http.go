package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/internal/domain"
)

// HTTPProvider fetches the daily rates table from an HTTP JSON endpoint.
// The endpoint returns a list of quotes in the base currency; cross rates
// are derived as rate(from)/rate(to).
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider builds a provider for the given endpoint.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// quote mirrors one row of the upstream table. Rate and Nominal arrive as
// strings and Rate is quoted per Nominal units of the currency.
type quote struct {
	Ccy     string `json:"Ccy"`
	Rate    string `json:"Rate"`
	Nominal string `json:"Nominal"`
}

// Rate implements Provider.
func (p *HTTPProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	table, err := p.fetch(ctx)
	if err != nil {
		return 0, err
	}

	fromRate, err := baseRate(table, from)
	if err != nil {
		return 0, err
	}
	toRate, err := baseRate(table, to)
	if err != nil {
		return 0, err
	}
	return fromRate / toRate, nil
}

// baseRate returns the value of one unit of code in the base currency.
func baseRate(table map[string]float64, code string) (float64, error) {
	if code == domain.BaseCurrency {
		return 1, nil
	}
	r, ok := table[code]
	if !ok || r <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoRate, code)
	}
	return r, nil
}

func (p *HTTPProvider) fetch(ctx context.Context) (map[string]float64, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		logger.Warn(ctx, "rates", "fetch.failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("rates: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		logger.Warn(ctx, "rates", "fetch.failed",
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}

	var quotes []quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("rates: decode: %w", err)
	}

	table := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		rate, err := strconv.ParseFloat(q.Rate, 64)
		if err != nil || rate <= 0 {
			continue
		}
		nominal, err := strconv.ParseFloat(q.Nominal, 64)
		if err != nil || nominal <= 0 {
			nominal = 1
		}
		table[strings.ToUpper(q.Ccy)] = rate / nominal
	}

	logger.Debug(ctx, "rates", "fetch.done",
		slog.Int("count", len(table)),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}
