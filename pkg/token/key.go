package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest secret accepted for a signing key.
const MinSecretLength = 32

const derivationInfo = "subgate-session-token-v1"

// Key is a named signing secret.
type Key struct {
	ID     string
	Secret []byte
}

// KeyRing is an ordered list of signing keys, newest first.
// It implements encoding.TextUnmarshaler so it can be read from the
// environment as "kid:secret,kid:secret".
type KeyRing []Key

// ParseKeyRing parses "kid:secret" pairs separated by commas.
func ParseKeyRing(s string) (KeyRing, error) {
	var ring KeyRing
	if err := ring.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return ring, nil
}

func (r *KeyRing) UnmarshalText(text []byte) error {
	var ring KeyRing
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(string(text), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, secret, ok := strings.Cut(part, ":")
		if !ok || id == "" {
			return fmt.Errorf("%w: expected kid:secret", ErrInvalidKey)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate key id %q", ErrInvalidKey, id)
		}
		seen[id] = struct{}{}
		ring = append(ring, Key{ID: id, Secret: []byte(secret)})
	}
	if len(ring) == 0 {
		return ErrNoKeys
	}
	*r = ring
	return nil
}

// deriveKey expands a configured secret into a 32-byte MAC key.
// The key id is used as salt so two ids sharing a secret still get distinct keys.
func deriveKey(k Key) ([]byte, error) {
	if len(k.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: key %q is shorter than %d bytes", ErrInvalidKey, k.ID, MinSecretLength)
	}
	r := hkdf.New(sha256.New, k.Secret, []byte(k.ID), []byte(derivationInfo))
	out := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return out, nil
}
