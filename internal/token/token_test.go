package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPair(t *testing.T) (privatePEM, publicPEM string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privateBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	return string(privateBytes), string(publicBytes)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	privatePEM, publicPEM := generateKeyPair(t)
	svc, err := NewService(privatePEM, publicPEM)
	require.NoError(t, err)
	return svc
}

func TestNewService_MissingKeys(t *testing.T) {
	t.Parallel()

	privatePEM, publicPEM := generateKeyPair(t)

	_, err := NewService("", publicPEM)
	assert.Error(t, err)

	_, err = NewService(privatePEM, "")
	assert.Error(t, err)

	_, err = NewService("not a key", publicPEM)
	assert.Error(t, err)

	_, err = NewService(privatePEM, "not a key")
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	tokenString, err := svc.Issue(42, "alice")
	require.NoError(t, err)

	claims, err := svc.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	// Fixed lifetime: exactly 24h between iat and exp.
	assert.Equal(t, TTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	first, err := svc.Issue(1, "alice")
	require.NoError(t, err)
	second, err := svc.Issue(1, "alice")
	require.NoError(t, err)

	firstClaims, err := svc.Verify(first)
	require.NoError(t, err)
	secondClaims, err := svc.Verify(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	svc.ttl = -time.Minute

	tokenString, err := svc.Issue(1, "alice")
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()

	issuing := newTestService(t)
	verifying := newTestService(t)

	tokenString, err := issuing.Issue(1, "alice")
	require.NoError(t, err)

	_, err = verifying.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	now := time.Now()
	claims := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        "jti",
			Issuer:    "somebody-else",
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(svc.privateKey)
	require.NoError(t, err)

	// Correct signature, wrong issuer: invalid, not expired.
	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongIssuerAndExpired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			Issuer:    "somebody-else",
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(svc.privateKey)
	require.NoError(t, err)

	// Issuer mismatch wins over expiry so a forged token learns nothing
	// about its timing.
	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongSigningMethod(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			Issuer:    Issuer,
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
