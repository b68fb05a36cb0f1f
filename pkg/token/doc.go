// Package token issues and verifies opaque session tokens.
//
// A token is a compact HMAC-SHA256 sealed payload:
//
//	base64url(payload).base64url(signature)
//
// The payload carries the session id, the account id, the absolute expiry and
// the id of the key that sealed it. Verification never touches storage: it
// checks structure, signature and expiry only. Whether the session still
// exists is the session store's business.
//
// Keys form a ring ordered newest first. New tokens are always sealed with the
// newest key; verification accepts any key in the ring, which allows rotating
// secrets without logging everybody out. Configured secrets are expanded with
// HKDF before use so the raw secret never becomes the MAC key directly.
//
// # Usage
//
//	ring, _ := token.ParseKeyRing("k2:new-secret,k1:old-secret")
//	codec, err := token.NewCodec(ring)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok, err := codec.Issue(accountID, sessionID, time.Now().Add(24*time.Hour))
//	claims, err := codec.Verify(tok)
//	switch {
//	case errors.Is(err, token.ErrExpired):
//	    // ask the caller to log in again
//	case errors.Is(err, token.ErrInvalidToken):
//	    // malformed, tampered or signed with a retired key
//	}
package token
