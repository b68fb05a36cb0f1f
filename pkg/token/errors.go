package token

import "errors"

var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpired      = errors.New("token: expired")
	ErrNoKeys       = errors.New("token: key ring is empty")
	ErrInvalidKey   = errors.New("token: invalid signing key")
)
