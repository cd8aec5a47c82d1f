package client

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", config.InitialBackoff)
	}
	if config.MaxBackoff != 10*time.Second {
		t.Errorf("MaxBackoff = %v, want 10s", config.MaxBackoff)
	}
	if config.MaxRateLimitWaits != 3 {
		t.Errorf("MaxRateLimitWaits = %d, want 3", config.MaxRateLimitWaits)
	}
	if config.DefaultRetryAfter != 1*time.Second {
		t.Errorf("DefaultRetryAfter = %v, want 1s", config.DefaultRetryAfter)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		resp       *http.Response
		err        error
		outcome    Outcome
		retryAfter time.Duration
	}{
		{
			name:    "transport error",
			err:     errors.New("connection refused"),
			outcome: RetryNetwork,
		},
		{
			name:    "500 internal server error",
			resp:    &http.Response{StatusCode: 500, Header: http.Header{}},
			outcome: RetryServer,
		},
		{
			name:    "503 service unavailable",
			resp:    &http.Response{StatusCode: 503, Header: http.Header{}},
			outcome: RetryServer,
		},
		{
			name:       "429 with retry-after seconds",
			resp:       &http.Response{StatusCode: 429, Header: http.Header{"Retry-After": []string{"7"}}},
			outcome:    RateLimited,
			retryAfter: 7 * time.Second,
		},
		{
			name:    "429 without retry-after",
			resp:    &http.Response{StatusCode: 429, Header: http.Header{}},
			outcome: RateLimited,
		},
		{
			name:    "400 bad request",
			resp:    &http.Response{StatusCode: 400, Header: http.Header{}},
			outcome: NoRetry,
		},
		{
			name:    "404 not found",
			resp:    &http.Response{StatusCode: 404, Header: http.Header{}},
			outcome: NoRetry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(tt.resp, tt.err)
			if cls.Outcome != tt.outcome {
				t.Errorf("Outcome = %v, want %v", cls.Outcome, tt.outcome)
			}
			if cls.RetryAfter != tt.retryAfter {
				t.Errorf("RetryAfter = %v, want %v", cls.RetryAfter, tt.retryAfter)
			}
			if tt.resp != nil && cls.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %d, want %d", cls.StatusCode, tt.resp.StatusCode)
			}
		})
	}
}

func TestClassification_Kind(t *testing.T) {
	tests := []struct {
		outcome Outcome
		kind    FailureKind
	}{
		{RetryNetwork, FailureNetwork},
		{RetryServer, FailureServer},
		{RateLimited, FailureRateLimit},
		{NoRetry, FailureClient},
	}

	for _, tt := range tests {
		if got := (Classification{Outcome: tt.outcome}).Kind(); got != tt.kind {
			t.Errorf("Kind(%v) = %v, want %v", tt.outcome, got, tt.kind)
		}
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	config := DefaultRetryConfig()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{6, 10 * time.Second},
		{0, 1 * time.Second}, // clamped to the first attempt
	}

	for _, tt := range tests {
		if got := config.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "5", 5 * time.Second},
		{"zero seconds", "0", 0},
		{"negative seconds", "-3", 0},
		{"garbage", "soon", 0},
		{"whitespace", "  12  ", 12 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	if got < 20*time.Second || got > 30*time.Second {
		t.Errorf("parseRetryAfter(future date) = %v, want ~30s", got)
	}

	past := time.Now().Add(-30 * time.Second).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(past); got != 0 {
		t.Errorf("parseRetryAfter(past date) = %v, want 0", got)
	}
}
