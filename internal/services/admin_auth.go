package services

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthorized = errors.New("unauthorized")

// AdminAuth checks the admin key presented to the order listing. Either a
// plain key or a bcrypt hash may be configured; with neither set every key
// is rejected.
type AdminAuth struct {
	Key  string
	Hash string
}

func (a AdminAuth) Check(presented string) bool {
	if presented == "" {
		return false
	}
	if a.Key != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(a.Key)) == 1 {
		return true
	}
	if a.Hash != "" && bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(presented)) == nil {
		return true
	}
	return false
}
