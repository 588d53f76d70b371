package llm

import (
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

// QuotaError marks a generation failure caused by backend quota or rate
// limiting. RetryAfter carries the backend-suggested delay when one was
// provided; zero means the caller should use its configured default.
type QuotaError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *QuotaError) Error() string {
	return "generation quota exhausted: " + e.Err.Error()
}

func (e *QuotaError) Unwrap() error { return e.Err }

// IsQuota reports whether err is (or wraps) a quota failure.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// SuggestedDelay returns the backend-suggested retry delay from a quota
// error, or fallback when none was provided.
func SuggestedDelay(err error, fallback time.Duration) time.Duration {
	var qe *QuotaError
	if errors.As(err, &qe) && qe.RetryAfter > 0 {
		return qe.RetryAfter
	}
	return fallback
}

// quotaPatterns are matched case-insensitively against provider error
// text. String matching is needed because the SDK does not expose
// sentinel errors for quota exhaustion; the structured APIError code is
// checked first.
var quotaPatterns = []string{
	"quota",
	"rate limit",
	"resource exhausted",
	"resource_exhausted",
	"429",
}

// retryHint extracts the backend-suggested retry delay from the
// RetryInfo detail of an APIError. Zero when the backend gave none or
// the value does not parse.
func retryHint(err error) time.Duration {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0
	}
	for _, detail := range apiErr.Details {
		kind, _ := detail["@type"].(string)
		if !strings.HasSuffix(kind, "RetryInfo") {
			continue
		}
		raw, _ := detail["retryDelay"].(string)
		if delay, parseErr := time.ParseDuration(raw); parseErr == nil && delay > 0 {
			return delay
		}
	}
	return 0
}

// isQuotaSignal classifies a raw provider error as quota exhaustion.
func isQuotaSignal(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range quotaPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
