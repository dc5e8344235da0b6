package interfaces

// PasswordHasher applies a slow, salted, adaptive one-way hash.
type PasswordHasher interface {
	// Hash digests a plaintext password. The digest is opaque and embeds
	// its own salt and work factor.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches digest. A wrong password is
	// false, never an error.
	Verify(plaintext, digest string) bool
}
