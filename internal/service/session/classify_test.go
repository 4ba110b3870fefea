package session

import (
	"errors"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failureKind
	}{
		{"http status", errors.New("HTTP 429: too many requests"), failureQuota},
		{"quota word", errors.New("daily Quota exceeded for project"), failureQuota},
		{"grpc code", errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), failureQuota},
		{"mixed case", errors.New("Resource_Exhausted"), failureQuota},
		{"network", errors.New("dial tcp: connection refused"), failureGeneric},
		{"timeout", errors.New("context deadline exceeded"), failureGeneric},
		{"nil", nil, failureGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyFailure(tt.err); got != tt.want {
				t.Errorf("classifyFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestApologyFor(t *testing.T) {
	if got := apologyFor(errors.New("429")); got != quotaApology {
		t.Errorf("quota error got %q", got)
	}
	if got := apologyFor(errors.New("boom")); got != genericApology {
		t.Errorf("generic error got %q", got)
	}
}
