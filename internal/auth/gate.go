package auth

import "crypto/subtle"

// APIKeyHeader carries the shared secret on API requests.
const APIKeyHeader = "X-API-Key"

// Gate checks request credentials against one configured secret.
// It is stateless and safe for concurrent use.
type Gate struct {
	secret []byte
}

// NewGate creates a Gate for the configured secret. An empty secret denies
// every request.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// IsAuthorized reports whether provided equals the configured secret byte
// for byte. An absent or empty credential is never authorized.
func (g *Gate) IsAuthorized(provided string) bool {
	if provided == "" || len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), g.secret) == 1
}
