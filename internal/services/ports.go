package services

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues and validates bearer tokens carrying a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Validate(token string) (string, error)
}
