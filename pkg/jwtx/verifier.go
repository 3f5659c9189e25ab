package jwtx

import (
	"context"
	"errors"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
// Implementations fetch key material remotely, hence the context.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)
