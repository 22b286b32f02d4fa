package rates

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const ratesBody = `[
	{"Ccy":"USD","Rate":"12650.50","Nominal":"1"},
	{"Ccy":"EUR","Rate":"13700.00","Nominal":"1"},
	{"Ccy":"JPY","Rate":"8450.00","Nominal":"100"},
	{"Ccy":"BAD","Rate":"oops","Nominal":"1"}
]`

func newTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProviderBaseQuote(t *testing.T) {
	srv := newTestServer(t, ratesBody, http.StatusOK)
	p := NewHTTPProvider(srv.URL, time.Second)

	rate, err := p.Rate(context.Background(), "USD", "UZS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 12650.50 {
		t.Fatalf("rate = %v, want 12650.50", rate)
	}
}

func TestHTTPProviderCrossRate(t *testing.T) {
	srv := newTestServer(t, ratesBody, http.StatusOK)
	p := NewHTTPProvider(srv.URL, time.Second)

	rate, err := p.Rate(context.Background(), "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 13700.0 / 12650.5
	if math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate = %v, want %v", rate, want)
	}
}

func TestHTTPProviderNominal(t *testing.T) {
	srv := newTestServer(t, ratesBody, http.StatusOK)
	p := NewHTTPProvider(srv.URL, time.Second)

	rate, err := p.Rate(context.Background(), "JPY", "UZS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rate-84.50) > 1e-9 {
		t.Fatalf("rate = %v, want 84.50", rate)
	}
}

func TestHTTPProviderSamePair(t *testing.T) {
	p := NewHTTPProvider("http://invalid.local", time.Second)
	rate, err := p.Rate(context.Background(), "USD", "USD")
	if err != nil || rate != 1 {
		t.Fatalf("rate = %v, err = %v, want 1, nil", rate, err)
	}
}

func TestHTTPProviderUnknownCurrency(t *testing.T) {
	srv := newTestServer(t, ratesBody, http.StatusOK)
	p := NewHTTPProvider(srv.URL, time.Second)

	if _, err := p.Rate(context.Background(), "XXX", "UZS"); !errors.Is(err, ErrNoRate) {
		t.Fatalf("err = %v, want ErrNoRate", err)
	}
	// Unparseable rows are skipped, not surfaced as quotes.
	if _, err := p.Rate(context.Background(), "BAD", "UZS"); !errors.Is(err, ErrNoRate) {
		t.Fatalf("err = %v, want ErrNoRate", err)
	}
}

func TestHTTPProviderUpstreamError(t *testing.T) {
	srv := newTestServer(t, "oops", http.StatusInternalServerError)
	p := NewHTTPProvider(srv.URL, time.Second)

	if _, err := p.Rate(context.Background(), "USD", "UZS"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
