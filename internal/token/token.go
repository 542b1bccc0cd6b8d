// Package token issues and verifies the RS256 bearer tokens that carry
// identity between services. The private key never leaves the auth service;
// holders of the public key can verify without being able to sign.
package token

import (
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the fixed issuer claim stamped into every token. Tokens carrying
// any other issuer are rejected as invalid, indistinguishably from forgeries.
const Issuer = "auth-service"

// TTL is the fixed token lifetime.
const TTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned for a well-formed, correctly signed token
	// past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid covers every other rejection: bad signature, wrong
	// signing method, malformed payload, wrong issuer. The causes are
	// deliberately not distinguished.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the signed payload inside a token.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a fixed RSA key pair.
type Service struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
}

// NewService parses both PEM-encoded keys and fails if either is missing or
// malformed. The key pair is provisioned out of band and never rotated at
// runtime, so there is no reload path.
func NewService(privateKeyPEM, publicKeyPEM string) (*Service, error) {
	if strings.TrimSpace(privateKeyPEM) == "" || strings.TrimSpace(publicKeyPEM) == "" {
		return nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, errors.New("JWT_PRIVATE_KEY is not a valid PEM-encoded RSA private key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, errors.New("JWT_PUBLIC_KEY is not a valid PEM-encoded RSA public key")
	}

	return &Service{
		privateKey: privateKey,
		publicKey:  publicKey,
		ttl:        TTL,
	}, nil
}

// Issue signs a token for the given identity. The jti claim is a fresh
// random UUID per token; it is issued but not tracked, so tokens simply
// age out rather than being revocable.
func (s *Service) Issue(userID int, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
			Issuer:    Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}

// Verify checks signature, expiry and issuer, and returns the claims on
// success. Failures collapse to ErrTokenExpired or ErrTokenInvalid; a wrong
// issuer is reported as invalid even when the token is also expired.
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) {
			return s.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return Claims{}, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
