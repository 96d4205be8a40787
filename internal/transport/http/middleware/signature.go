package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
)

// SignatureHeader carries the inbound webhook signature:
// hex(HMAC-SHA256(raw request body, shared secret)).
const SignatureHeader = "X-Webhook-Signature"

// Signature returns middleware that rejects requests whose body does not
// match the signature header. The body is re-buffered so downstream handlers
// can read it normally.
func Signature(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sig := r.Header.Get(SignatureHeader)
			if sig == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing webhook signature")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "unreadable request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, key)
			mac.Write(body)
			want := hex.EncodeToString(mac.Sum(nil))
			if !hmac.Equal([]byte(sig), []byte(want)) {
				writeJSONError(w, http.StatusUnauthorized, "invalid webhook signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
