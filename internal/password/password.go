// Package password owns the password hash lifecycle: argon2id for every new
// hash, bcrypt recognized as the legacy algorithm so existing rows keep
// verifying until a successful login upgrades them in place.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/titanium/backend/config"
)

const (
	argon2Prefix = "$argon2id$"
	saltLength   = 16
	keyLength    = 32
)

// ErrMalformedHash is returned when a stored hash cannot be parsed. It means
// the row is corrupt, not that the password is wrong.
var ErrMalformedHash = errors.New("malformed password hash")

// Hasher computes and checks argon2id hashes with fixed parameters. The
// parameters are part of the encoded hash, so a Hasher configured with
// stronger settings still verifies older hashes and can report that they
// need an upgrade.
type Hasher struct {
	timeCost    uint32
	memoryKB    uint32
	parallelism uint8
}

func NewHasher(cfg config.PasswordConfig) (*Hasher, error) {
	if cfg.TimeCost < 1 {
		return nil, errors.New("argon2 time cost must be >= 1")
	}
	if cfg.MemoryKB < 8*1024 {
		return nil, errors.New("argon2 memory must be >= 8192 KB")
	}
	if cfg.Parallelism < 1 || cfg.Parallelism > 255 {
		return nil, errors.New("argon2 parallelism must be in [1,255]")
	}
	return &Hasher{
		timeCost:    uint32(cfg.TimeCost),
		memoryKB:    uint32(cfg.MemoryKB),
		parallelism: uint8(cfg.Parallelism),
	}, nil
}

// Hash derives an argon2id hash with a fresh random salt and returns it in
// PHC string form: $argon2id$v=19$m=...,t=...,p=...$<salt>$<key>.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, h.timeCost, h.memoryKB, h.parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memoryKB,
		h.timeCost,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the key with the parameters stored in the hash and
// compares in constant time.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.timeCost,
		parsed.memoryKB,
		parsed.parallelism,
		uint32(len(parsed.key)),
	)
	return subtle.ConstantTimeCompare(key, parsed.key) == 1, nil
}

// NeedsRehash reports whether the stored hash was computed with weaker
// parameters than the Hasher is configured with.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	if h.memoryKB > parsed.memoryKB {
		return true, nil
	}
	if h.timeCost > parsed.timeCost {
		return true, nil
	}
	if h.parallelism > parsed.parallelism {
		return true, nil
	}
	if uint32(len(parsed.key)) != keyLength {
		return true, nil
	}
	return false, nil
}

// IsArgon2 reports whether the stored hash is tagged as the current
// algorithm.
func IsArgon2(encoded string) bool {
	return strings.HasPrefix(encoded, argon2Prefix)
}

// IsBcrypt reports whether the stored hash is tagged as the legacy
// algorithm.
func IsBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// VerifyBcrypt checks a password against a legacy bcrypt hash. bcrypt's
// comparison is constant-time internally.
func VerifyBcrypt(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

type parsedHash struct {
	memoryKB    uint32
	timeCost    uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(encoded string) (parsedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return parsedHash{}, ErrMalformedHash
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return parsedHash{}, ErrMalformedHash
	}
	if v, err := strconv.Atoi(version); err != nil || v != argon2.Version {
		return parsedHash{}, ErrMalformedHash
	}

	var parsed parsedHash
	for _, pair := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return parsedHash{}, ErrMalformedHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return parsedHash{}, ErrMalformedHash
		}
		switch k {
		case "m":
			parsed.memoryKB = uint32(n)
		case "t":
			parsed.timeCost = uint32(n)
		case "p":
			if n < 1 || n > 255 {
				return parsedHash{}, ErrMalformedHash
			}
			parsed.parallelism = uint8(n)
		default:
			return parsedHash{}, ErrMalformedHash
		}
	}
	if parsed.memoryKB == 0 || parsed.timeCost == 0 || parsed.parallelism == 0 {
		return parsedHash{}, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return parsedHash{}, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return parsedHash{}, ErrMalformedHash
	}

	parsed.salt = salt
	parsed.key = key
	return parsed, nil
}
