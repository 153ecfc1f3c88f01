package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", statusErr(429))
	if got := StatusCode(wrapped); got != 429 {
		t.Fatalf("StatusCode: got=%d want=429", got)
	}
	if got := StatusCode(fmt.Errorf("plain")); got != 0 {
		t.Fatalf("StatusCode plain: got=%d want=0", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{statusErr(503), true},
		{statusErr(429), true},
		{statusErr(401), false},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v): got=%v want=%v", tc.err, got, tc.want)
		}
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"30"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("capped: got=%v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("fallback: got=%v", got)
	}
}
