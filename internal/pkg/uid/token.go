package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// OpaqueTokenBytes is the entropy carried by each opaque token. 32 bytes
// gives 256 bits, well above the 128-bit floor for unguessable credentials.
const OpaqueTokenBytes = 32

// OpaqueToken generates unguessable bearer tokens (hex-encoded).
type OpaqueToken struct{}

// NewOpaqueToken returns an opaque token generator.
func NewOpaqueToken() *OpaqueToken {
	return &OpaqueToken{}
}

// Generate returns a new random token. crypto/rand never fails on supported
// platforms; if it ever does the process cannot safely mint credentials, so
// Generate panics rather than degrade to a guessable value.
func (*OpaqueToken) Generate() string {
	var b [OpaqueTokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("uid: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
