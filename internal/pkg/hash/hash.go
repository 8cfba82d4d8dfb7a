package hash

// Hash hashes secrets and verifies plaintexts against stored hashes.
type Hash interface {
	// Hash returns the hash of the input string.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored hash. Implementations
	// must compare in constant time.
	Verify(hashed, str string) bool
}
