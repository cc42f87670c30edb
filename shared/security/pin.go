// Package security holds the PIN hashing capability. It is injected into the
// components that need it; nothing here keeps process-wide state.
package security

import "golang.org/x/crypto/bcrypt"

// PinHasher hashes and verifies transfer PINs.
type PinHasher interface {
	Hash(pin string) (string, error)
	Compare(hash, pin string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), h.Cost)
	return string(bytes), err
}

func (h BcryptHasher) Compare(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
