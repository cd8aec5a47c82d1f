package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beltransit/irail-go/internal/testutil"
	"github.com/beltransit/irail-go/pkg/cache"
	"github.com/beltransit/irail-go/pkg/client"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func newProxyClient(t *testing.T, mock *testutil.MockIRail) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.BurstCapacity = 100
	cfg.RefillRate = 100

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("body = %q, want OK", body)
	}
}

func TestCacheStatsHandler(t *testing.T) {
	mock := testutil.NewMockIRail()
	defer mock.Close()
	irail := newProxyClient(t, mock)

	req := httptest.NewRequest("GET", "/cache/stats", nil)
	w := httptest.NewRecorder()
	cacheStatsHandler(irail)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var stats cache.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Count != 0 {
		t.Errorf("Count = %d, want 0 for a fresh client", stats.Count)
	}
}

func TestAPIHandler(t *testing.T) {
	mock := testutil.NewMockIRail()
	defer mock.Close()
	mock.SetHandler("/liveboard/", testutil.NewConditionalHandler(`"v1"`,
		`{"version":"1.3","station":"Gent-Sint-Pieters"}`))

	irail := newProxyClient(t, mock)
	handler := apiHandler(irail, zerolog.Nop())

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/liveboard?station=Gent-Sint-Pieters", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", resp.StatusCode, body)
		}
		if !strings.Contains(string(body), "Gent-Sint-Pieters") {
			t.Errorf("body = %s, missing station", body)
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/liveboard", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for missing station/id", w.Result().StatusCode)
		}
	})

	t.Run("missing endpoint", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Result().StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Result().StatusCode)
		}
	})

	t.Run("format and lang stripped", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/liveboard?station=Gent-Sint-Pieters&format=xml&lang=fr", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Result().StatusCode)
		}
		// The dispatcher always speaks JSON in its configured language.
		if got := mock.LastQuery()["format"]; got != "json" {
			t.Errorf("upstream format = %q, want json", got)
		}
		if got := mock.LastQuery()["lang"]; got != irail.Language() {
			t.Errorf("upstream lang = %q, want %q", got, irail.Language())
		}
	})
}

func TestProxyStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"client error", &client.APIError{Kind: client.FailureClient}, http.StatusBadRequest},
		{"rate limited", &client.APIError{Kind: client.FailureRateLimit}, http.StatusTooManyRequests},
		{"server failure", &client.APIError{Kind: client.FailureServer}, http.StatusBadGateway},
		{"retries exhausted", &client.APIError{Kind: client.FailureExhausted}, http.StatusBadGateway},
		{"unclassified", io.ErrUnexpectedEOF, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proxyStatus(tt.err); got != tt.want {
				t.Errorf("proxyStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mock := testutil.NewMockIRail()
	defer mock.Close()
	newProxyClient(t, mock) // registers all metrics

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("expected Prometheus format metrics output")
	}
	if !strings.Contains(bodyStr, "irail_ratelimit_admissions_total") {
		t.Error("expected admission counter in metrics output")
	}
}
