package indicators

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorSentinels(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		sentinel error
		cause    error
	}{
		{name: "fetch", err: NewFetchError("worldbank", cause), sentinel: ErrFetchFailed, cause: cause},
		{name: "cache", err: NewCacheError("read", "x.db", os.ErrPermission), sentinel: ErrCacheIO, cause: os.ErrPermission},
		{name: "metric", err: &MetricNotFoundError{Metric: "C"}, sentinel: ErrMetricNotFound},
		{name: "entity", err: &EntityNotFoundError{Entity: "Atlantis"}, sentinel: ErrEntityNotFound},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("load: %w", tt.err)
		if !errors.Is(wrapped, tt.sentinel) {
			t.Errorf("%s: %v does not match its sentinel", tt.name, wrapped)
		}
		if tt.cause != nil && !errors.Is(wrapped, tt.cause) {
			t.Errorf("%s: cause lost in %v", tt.name, wrapped)
		}
		for _, other := range []error{ErrFetchFailed, ErrCacheIO, ErrMetricNotFound, ErrEntityNotFound} {
			if other != tt.sentinel && errors.Is(tt.err, other) {
				t.Errorf("%s: unexpectedly matches %v", tt.name, other)
			}
		}
	}
}

func TestCacheErrorMessage(t *testing.T) {
	err := NewCacheError("write", "/tmp/wb.db", os.ErrPermission)
	if got, want := err.Error(), "cache write /tmp/wb.db: permission denied"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
