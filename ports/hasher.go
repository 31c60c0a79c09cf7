package ports

// Hasher performs one-way password hashing and verification.
type Hasher interface {
	Hash(password string) (string, error)

	// Compare returns nil when password matches the stored hash.
	Compare(hash, password string) error
}
