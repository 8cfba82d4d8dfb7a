package uid

import (
	"encoding/hex"
	"testing"
)

func TestOpaqueTokenGenerate(t *testing.T) {
	g := NewOpaqueToken()

	seen := map[string]bool{}
	for range 100 {
		tok := g.Generate()
		if len(tok) != OpaqueTokenBytes*2 {
			t.Fatalf("expected %d hex chars, got %d", OpaqueTokenBytes*2, len(tok))
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("token is not hex: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = true
	}
}
