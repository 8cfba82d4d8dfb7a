package usecase

import (
	"testing"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    string
		channel entity.Channel
	}{
		"email lowercased": {"  User@Example.COM ", "user@example.com", entity.ChannelEmail},
		"mobile untouched": {" +6281234567890 ", "+6281234567890", entity.ChannelMobile},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ch := normalizeIdentifier(tc.in)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if ch != tc.channel {
				t.Fatalf("expected channel %s, got %s", tc.channel, ch)
			}
		})
	}
}

func TestMaskIdentifier(t *testing.T) {
	tests := map[string]struct {
		in      string
		channel entity.Channel
		want    string
	}{
		"email":             {"alice@example.com", entity.ChannelEmail, "a***@example.com"},
		"short local part":  {"a@x.io", entity.ChannelEmail, "***@x.io"},
		"mobile":            {"+6281234567890", entity.ChannelMobile, "***890"},
		"short mobile":      {"911", entity.ChannelMobile, "***"},
		"unknown channel":   {"whatever", entity.ChannelUnknown, "***"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := maskIdentifier(tc.in, tc.channel); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	now := testNow

	if got := retryAfterSeconds(now.Add(90*time.Second), now); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	// Fractional seconds round up.
	if got := retryAfterSeconds(now.Add(1500*time.Millisecond), now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	// Past deadlines still tell the client to wait at least a second.
	if got := retryAfterSeconds(now.Add(-time.Minute), now); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
