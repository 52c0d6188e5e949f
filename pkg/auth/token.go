package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

const tokenIssuer = "globe-middleware"

// SessionClaims are the claims carried by a session token: the wallet
// identity proven during connect.
type SessionClaims struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 session tokens. The signing key is
// derived from the server seed so restarts with the same seed keep tokens
// valid.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer derives the signing key from serverSeed via HKDF.
func NewTokenIssuer(serverSeed []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(serverSeed) < 32 {
		return nil, fmt.Errorf("server seed must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, serverSeed, nil, []byte("session-token-key"))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive token key: %w", err)
	}

	return &TokenIssuer{key: key, ttl: ttl}, nil
}

// Issue mints a session token for the given wallet identity.
func (t *TokenIssuer) Issue(chain wallet.Chain, address string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Chain:   chain.String(),
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token and returns its claims.
func (t *TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if !wallet.Chain(claims.Chain).Valid() {
		return nil, fmt.Errorf("invalid chain in token: %q", claims.Chain)
	}
	return claims, nil
}
