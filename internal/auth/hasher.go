package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	appErr "github.com/bracula/campus/pkg/errors"
)

// PasswordHasher hashes and verifies credentials. Hashes are self-contained:
// the salt and cost travel inside the returned string.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	// VerifyDummy spends the same work as Verify against a throwaway hash.
	// Login calls it for unknown emails so response time does not reveal
	// whether an account exists.
	VerifyDummy(password string)
}

type BcryptHasher struct {
	cost  int
	dummy []byte
}

// NewBcryptHasher builds a hasher with the given bcrypt cost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, appErr.New(appErr.CodeInvalid, "bcrypt cost out of range")
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("campus-dummy-password"), cost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "generate dummy hash failed")
	}
	return &BcryptHasher{cost: cost, dummy: dummy}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", appErr.Invalid("password", "password must be at most 72 bytes")
		}
		return "", appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *BcryptHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
