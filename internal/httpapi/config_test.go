package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
}

func TestSetPredictTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	SetPredictTimeoutSeconds(-5)
	if predictTimeout != 0 {
		t.Fatalf("expected 0, got %d", predictTimeout)
	}
	SetPredictTimeoutSeconds(3)
	if predictTimeout != 3 {
		t.Fatalf("expected 3, got %d", predictTimeout)
	}
	SetPredictTimeoutSeconds(0)
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	origins := []string{"a"}
	SetCORSOptions(true, origins, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	origins[0] = "b"
	if !corsEnabled || corsAllowedOrigins[0] != "a" {
		t.Fatalf("CORS options not copied: %v", corsAllowedOrigins)
	}
}
