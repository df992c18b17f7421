package apierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindRateLimit, "coingecko.list-markets", "throttled")
	if KindOf(err) != KindRateLimit {
		t.Fatalf("expected rate_limit kind, got %q", KindOf(err))
	}

	wrapped := fmt.Errorf("refresh cycle: %w", err)
	if KindOf(wrapped) != KindRateLimit {
		t.Fatalf("kind should survive wrapping, got %q", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != "" {
		t.Fatal("plain errors have no kind")
	}
}

func TestIsKind(t *testing.T) {
	err := Wrap(KindNotFound, "coingecko.coin-detail", errors.New("404"))
	if !IsKind(err, KindNotFound) {
		t.Fatal("expected not_found kind")
	}
	if IsKind(err, KindNetwork) {
		t.Fatal("kinds must not alias each other")
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{
		Kind:       KindNetwork,
		Op:         "coingecko.list-markets",
		StatusCode: 503,
		Attempts:   3,
		Err:        errors.New("connection reset"),
	}
	got := err.Error()
	for _, want := range []string{"coingecko.list-markets", "network", "503", "3 attempts", "connection reset"} {
		if !strings.Contains(got, want) {
			t.Fatalf("error string %q missing %q", got, want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(KindNetwork, "rss.fetch", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
}
