package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestIsQuota(t *testing.T) {
	quota := &QuotaError{Err: errors.New("429 too many requests")}

	if !IsQuota(quota) {
		t.Error("IsQuota should detect a QuotaError")
	}
	if !IsQuota(fmt.Errorf("generate: %w", quota)) {
		t.Error("IsQuota should detect a wrapped QuotaError")
	}
	if IsQuota(errors.New("connection refused")) {
		t.Error("IsQuota must not match a plain error")
	}
	if IsQuota(nil) {
		t.Error("IsQuota(nil) must be false")
	}
}

func TestIsQuotaSignal_Patterns(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"googleapi: Error 429: quota exceeded", true},
		{"RESOURCE_EXHAUSTED: rate limit", true},
		{"Quota exceeded for model", true},
		{"connection reset by peer", false},
		{"invalid argument", false},
	}
	for _, tt := range tests {
		if got := isQuotaSignal(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isQuotaSignal(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestRetryHint(t *testing.T) {
	withHint := genai.APIError{
		Code:   429,
		Status: "RESOURCE_EXHAUSTED",
		Details: []map[string]any{
			{"@type": "type.googleapis.com/google.rpc.QuotaFailure"},
			{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "7s"},
		},
	}
	if got := retryHint(withHint); got != 7*time.Second {
		t.Errorf("retryHint() = %v, want 7s from RetryInfo detail", got)
	}
	if got := retryHint(fmt.Errorf("generate: %w", withHint)); got != 7*time.Second {
		t.Errorf("retryHint(wrapped) = %v, want 7s", got)
	}

	noInfo := genai.APIError{Code: 429, Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.QuotaFailure"}}}
	if got := retryHint(noInfo); got != 0 {
		t.Errorf("retryHint() = %v, want 0 without RetryInfo", got)
	}

	badDelay := genai.APIError{Code: 429, Details: []map[string]any{
		{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "soon"},
	}}
	if got := retryHint(badDelay); got != 0 {
		t.Errorf("retryHint() = %v, want 0 for an unparseable delay", got)
	}

	if got := retryHint(errors.New("plain")); got != 0 {
		t.Errorf("retryHint(plain) = %v, want 0", got)
	}
}

// The hint must flow through to SuggestedDelay via the wrapped error.
func TestRetryHint_ReachesSuggestedDelay(t *testing.T) {
	apiErr := genai.APIError{
		Code:    429,
		Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "5s"}},
	}
	quota := &QuotaError{RetryAfter: retryHint(apiErr), Err: apiErr}
	if got := SuggestedDelay(quota, 2*time.Second); got != 5*time.Second {
		t.Errorf("SuggestedDelay() = %v, want backend hint 5s", got)
	}
}

func TestSuggestedDelay(t *testing.T) {
	fallback := 2 * time.Second

	withHint := &QuotaError{RetryAfter: 7 * time.Second, Err: errors.New("429")}
	if got := SuggestedDelay(withHint, fallback); got != 7*time.Second {
		t.Errorf("SuggestedDelay() = %v, want backend hint 7s", got)
	}

	withoutHint := &QuotaError{Err: errors.New("429")}
	if got := SuggestedDelay(withoutHint, fallback); got != fallback {
		t.Errorf("SuggestedDelay() = %v, want fallback %v", got, fallback)
	}

	if got := SuggestedDelay(errors.New("plain"), fallback); got != fallback {
		t.Errorf("SuggestedDelay(plain) = %v, want fallback", got)
	}
}
