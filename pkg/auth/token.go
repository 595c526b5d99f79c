package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
)

// BearerFromHeader extracts the raw token from an Authorization header value.
// Returns "" when no credential is present.
func BearerFromHeader(header string) string {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// InspectExpiry reads the exp claim without verifying the signature. The
// upstream API owns token issuance and verification; the storefront only
// avoids spending a who-am-i call on a token that is already dead.
func InspectExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiredLocally reports whether the token's exp claim has clearly passed,
// honoring the configured leeway. Tokens without a readable exp claim are
// never rejected locally.
func ExpiredLocally(cfg config.JWTConfig, token string, now time.Time) bool {
	exp, ok := InspectExpiry(token)
	if !ok {
		return false
	}
	return now.After(exp.Add(cfg.ExpiryLeeway))
}

// Fingerprint derives a stable cache key from a token without storing the
// credential itself.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
