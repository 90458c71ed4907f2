package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	// ErrPasswordTooLong is returned when bcrypt cannot hash the whole password.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	// ErrUnknownHashType is returned for stored hashes in an unrecognized format.
	ErrUnknownHashType = errors.New("unknown password hash format")
)

// argon2idParams follows the OWASP minimums: 46 MiB memory, 1 iteration.
var argon2idParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher hashes new credentials with one algorithm and verifies
// stored hashes of either supported algorithm.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
	argon      *argon2id.Params
}

// NewPasswordHasher builds a hasher. Unknown algorithms fall back to bcrypt.
func NewPasswordHasher(algorithm string, bcryptCost int) *PasswordHasher {
	if algorithm != AlgorithmArgon2id {
		algorithm = AlgorithmBcrypt
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{algorithm: algorithm, bcryptCost: bcryptCost, argon: argon2idParams}
}

// Algorithm returns the algorithm used for new hashes.
func (h *PasswordHasher) Algorithm() string {
	return h.algorithm
}

// Hash returns a salted one-way hash of the plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return argon2id.CreateHash(password, h.argon)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches the stored hash.
// A mismatch is (false, nil); only malformed hashes produce an error.
func (h *PasswordHasher) Compare(hashed, password string) (bool, error) {
	switch DetectHashType(hashed) {
	case AlgorithmArgon2id:
		return safeArgon2idCompare(password, hashed)
	case AlgorithmBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	default:
		return false, ErrUnknownHashType
	}
}

// DetectHashType identifies the algorithm of a stored hash from its prefix.
func DetectHashType(hashed string) string {
	switch {
	case strings.HasPrefix(hashed, "$argon2id$"):
		return AlgorithmArgon2id
	case strings.HasPrefix(hashed, "$2a$"), strings.HasPrefix(hashed, "$2b$"), strings.HasPrefix(hashed, "$2y$"):
		return AlgorithmBcrypt
	default:
		return "unknown"
	}
}

// safeArgon2idCompare converts panics from malformed argon2id parameters into errors.
func safeArgon2idCompare(password, hashed string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(password, hashed)
}
