package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Sign returns the hex HMAC-SHA256 of payload, as sent by LemonSqueezy in
// the X-Signature header.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a hex HMAC-SHA256 signature over the raw payload in
// constant time.
func VerifySignature(secret string, payload []byte, signature string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) != sha256.Size {
		return ErrSignatureMismatch
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	if !hmac.Equal(h.Sum(nil), got) {
		return ErrSignatureMismatch
	}
	return nil
}

// SignPaddle returns a Paddle-Signature header value for payload sent at ts.
func SignPaddle(secret string, ts time.Time, payload []byte) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(unix + ":"))
	h.Write(payload)
	return "ts=" + unix + ";h1=" + hex.EncodeToString(h.Sum(nil))
}
