package hash

// Hash abstracts one-way hashing of secrets.
type Hash interface {
	// Hash hashes plaintext and returns the stored representation.
	Hash(plaintext string) ([]byte, error)
	// Verify returns true when plaintext matches the hashed value.
	Verify(hashed, plaintext string) bool
}
