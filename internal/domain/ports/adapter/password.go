package adapter

// PasswordHasher turns passwords into stored hashes and checks them back.
// Compare returns domain.ErrUnauthorized when the password does not match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
