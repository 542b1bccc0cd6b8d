package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/titanium/backend/internal/password"
	"github.com/titanium/backend/internal/store"
	"github.com/titanium/backend/types"
)

// ErrInvalidCredentials covers every way a login can fail: unknown username,
// wrong password, unreadable stored hash. Callers get no hint which one it
// was, so the API cannot be used to probe for registered usernames.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	UpdatePasswordHash(ctx context.Context, id int, newHash string) error
}

// UserService encapsulates registration and credential verification.
type UserService struct {
	repo   UserRepository
	hasher *password.Hasher

	// verified against when the username does not exist, so the
	// unknown-user path costs the same as a wrong password
	decoyHash string
}

func NewUserService(repo UserRepository, hasher *password.Hasher) (*UserService, error) {
	decoy, err := hasher.Hash("decoy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("preparing decoy hash: %w", err)
	}
	return &UserService{repo: repo, hasher: hasher, decoyHash: decoy}, nil
}

// Register hashes the password and inserts the user. No pre-check for an
// existing username; the database unique constraint is the single arbiter,
// so concurrent registrations of the same name cannot both win. A collision
// surfaces as store.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, username, email, plaintext string) (types.User, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.Create(ctx, username, email, hash)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// VerifyCredentials checks a username/password pair and returns the user on
// success. Stored bcrypt hashes from before the argon2 switch still verify;
// a successful login transparently rewrites them as argon2. Argon2 hashes
// made with weaker-than-current parameters are rehashed the same way. Both
// rewrites are best effort: a failed write is logged and the login still
// succeeds, the next login simply tries again.
func (s *UserService) VerifyCredentials(ctx context.Context, username, plaintext string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = s.hasher.Verify(plaintext, s.decoyHash)
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	switch {
	case password.IsArgon2(user.PasswordHash):
		ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
		if err != nil {
			log.Printf("services: unreadable password hash for user %q: %v", username, err)
			return types.User{}, ErrInvalidCredentials
		}
		if !ok {
			return types.User{}, ErrInvalidCredentials
		}
		if needs, err := s.hasher.NeedsRehash(user.PasswordHash); err == nil && needs {
			s.rewriteHash(ctx, user, plaintext, "parameter upgrade")
		}
		return user, nil

	case password.IsBcrypt(user.PasswordHash):
		if !password.VerifyBcrypt(plaintext, user.PasswordHash) {
			return types.User{}, ErrInvalidCredentials
		}
		s.rewriteHash(ctx, user, plaintext, "bcrypt migration")
		return user, nil

	default:
		log.Printf("services: unknown password hash format for user %q", username)
		return types.User{}, ErrInvalidCredentials
	}
}

func (s *UserService) rewriteHash(ctx context.Context, user types.User, plaintext, reason string) {
	newHash, err := s.hasher.Hash(plaintext)
	if err != nil {
		log.Printf("services: rehash (%s) failed for user %q: %v", reason, user.Username, err)
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		log.Printf("services: storing rehash (%s) failed for user %q: %v", reason, user.Username, err)
		return
	}
	log.Printf("services: rewrote password hash for user %q (%s)", user.Username, reason)
}
