package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost targets roughly 100-300ms per hash on commodity
// hardware, trading login latency for brute-force resistance.
const DefaultBcryptCost = 12

// HashPassword returns a bcrypt hash of plain using the given cost.
// The hash is self-describing (algorithm, cost and salt embedded), so
// verification needs no side channel.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash and a plain password in
// constant time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
