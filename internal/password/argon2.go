package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.PasswordHasher = (*Argon2)(nil)

// ErrMalformedDigest is returned when a stored digest cannot be parsed.
// It signals corrupted storage, not a wrong password.
var ErrMalformedDigest = errors.New("malformed password digest")

const (
	saltLength = 16
	keyLength  = 32

	maxMemoryKiB   = 4 * 1024 * 1024
	maxTime        = 64
	maxParallelism = 64
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
}

// DefaultParams returns the RFC 9106 second recommended profile.
func DefaultParams() Params {
	return Params{Time: 3, MemoryKiB: 64 * 1024, Parallelism: 2}
}

// Argon2 hashes passwords with Argon2id and encodes them as PHC strings.
type Argon2 struct {
	params Params
}

// NewArgon2 validates params and creates a hasher.
func NewArgon2(params Params) (*Argon2, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Argon2{params: params}, nil
}

func (p Params) validate() error {
	if p.Time == 0 || p.Time > maxTime {
		return fmt.Errorf("argon2 time must be in [1, %d], got %d", maxTime, p.Time)
	}
	if p.Parallelism == 0 || p.Parallelism > maxParallelism {
		return fmt.Errorf("argon2 parallelism must be in [1, %d], got %d", maxParallelism, p.Parallelism)
	}
	if p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > maxMemoryKiB {
		return fmt.Errorf("argon2 memory must be in [%d, %d] KiB, got %d", 8*uint32(p.Parallelism), maxMemoryKiB, p.MemoryKiB)
	}
	return nil
}

// Hash returns "$argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt>$<key>" with a fresh salt.
func (a *Argon2) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, a.params.Time, a.params.MemoryKiB, a.params.Parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.MemoryKiB, a.params.Time, a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares plaintext against digest using the parameters stored in
// the digest. A mismatch returns false with a nil error.
func (a *Argon2) Verify(plaintext, digest string) (bool, error) {
	params, salt, key, err := parsePHC(digest)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(plaintext), salt, params.Time, params.MemoryKiB, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func parsePHC(digest string) (Params, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, fmt.Errorf("%w: unexpected number of segments", ErrMalformedDigest)
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedDigest, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version", ErrMalformedDigest)
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Time, &params.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: bad parameters: %v", ErrMalformedDigest, err)
	}
	if err := params.validate(); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: bad salt", ErrMalformedDigest)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: bad key", ErrMalformedDigest)
	}

	return params, salt, key, nil
}
