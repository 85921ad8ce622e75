package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const identityKey contextKey = "buyer_email"

var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("invalid token signature")
)

// TokenCodec issues and verifies the bearer credential carrying a buyer
// identity: email|expiryUnix|hexHMAC over the auth secret. Session issuance
// itself lives elsewhere; this only has to carry a verified email.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

func (c *TokenCodec) Issue(email string, ttl time.Duration) string {
	expiry := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("%s|%d", email, expiry)
	return payload + "|" + c.sign(payload)
}

func (c *TokenCodec) Verify(token string) (string, error) {
	idx := strings.LastIndex(token, "|")
	if idx < 0 {
		return "", ErrTokenMalformed
	}
	payload, signature := token[:idx], token[idx+1:]

	if !hmac.Equal([]byte(c.sign(payload)), []byte(signature)) {
		return "", ErrTokenSignature
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 2 || parts[0] == "" {
		return "", ErrTokenMalformed
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrTokenMalformed
	}
	if time.Now().Unix() > expiry {
		return "", ErrTokenExpired
	}

	return parts[0], nil
}

func (c *TokenCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// AuthMiddleware extracts a bearer token and, when valid, injects the buyer
// email into the request context. Requests without a token pass through;
// handlers that require an identity check the context themselves.
func AuthMiddleware(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if email, err := codec.Verify(token); err == nil {
					ctx := context.WithValue(r.Context(), identityKey, email)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(identityKey).(string); ok {
		return email
	}
	return ""
}
