package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/titanium/backend/config"
)

// Small parameters keep the tests fast; production defaults live in config.
func testHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(config.PasswordConfig{TimeCost: 1, MemoryKB: 8 * 1024, Parallelism: 1})
	require.NoError(t, err)
	return h
}

func TestNewHasher_RejectsWeakConfig(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(config.PasswordConfig{TimeCost: 0, MemoryKB: 8 * 1024, Parallelism: 1})
	assert.Error(t, err)

	_, err = NewHasher(config.PasswordConfig{TimeCost: 1, MemoryKB: 1024, Parallelism: 1})
	assert.Error(t, err)

	_, err = NewHasher(config.PasswordConfig{TimeCost: 1, MemoryKB: 8 * 1024, Parallelism: 0})
	assert.Error(t, err)
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := testHasher(t)

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.True(t, IsArgon2(encoded))
	assert.False(t, IsBcrypt(encoded))

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_UniqueSalts(t *testing.T) {
	t.Parallel()

	h := testHasher(t)

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	weak := testHasher(t)
	encoded, err := weak.Hash("some password")
	require.NoError(t, err)

	needs, err := weak.NeedsRehash(encoded)
	require.NoError(t, err)
	assert.False(t, needs)

	stronger, err := NewHasher(config.PasswordConfig{TimeCost: 2, MemoryKB: 16 * 1024, Parallelism: 1})
	require.NoError(t, err)

	// The stronger hasher still verifies the weak hash but flags it.
	ok, err := stronger.Verify("some password", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	needs, err = stronger.NeedsRehash(encoded)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := testHasher(t)

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2id$v=19$m=8192,t=1,p=1$salt",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
	} {
		_, err := h.Verify("password", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", encoded)
	}
}

func TestBcryptLegacy(t *testing.T) {
	t.Parallel()

	legacy, err := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, IsBcrypt(string(legacy)))
	assert.False(t, IsArgon2(string(legacy)))
	assert.True(t, VerifyBcrypt("old password", string(legacy)))
	assert.False(t, VerifyBcrypt("new password", string(legacy)))
}
