// Package hash provides password hashing backed by argon2id.
//
// Argon2id is a salted, iterated, memory-hard KDF; plain digests such as MD5
// or SHA-1 must never be used for password storage.
package hash

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argonTime    = 1         // iterations
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32
)

var ErrEmptyPassword = errors.New("password cannot be empty")
var ErrInvalidHash = errors.New("invalid password hash encoding")

// Argon2id hashes and verifies passwords. A semaphore caps how many argon2
// computations run at once: one expensive hash must not serialize unrelated
// logins, but unbounded parallelism would let a login burst exhaust memory
// (each computation pins argonMemory KiB).
type Argon2id struct {
	sem chan struct{}
}

// New returns an Argon2id hasher allowing up to maxConcurrent simultaneous
// computations. maxConcurrent <= 0 defaults to runtime.NumCPU().
func New(maxConcurrent int) *Argon2id {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &Argon2id{sem: make(chan struct{}, maxConcurrent)}
}

// Hash produces a PHC-encoded argon2id hash of password:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func (h *Argon2id) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches the PHC-encoded hash. The
// comparison is constant-time; a mismatch is (false, nil), not an error.
func (h *Argon2id) Verify(ctx context.Context, password, encoded string) (bool, error) {
	salt, expected, timeCost, memory, threads, err := decode(encoded)
	if err != nil {
		return false, err
	}

	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	computed := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// acquire blocks until a computation slot is free or ctx is done. An
// abandoned login stops waiting instead of holding a hash slot.
func (h *Argon2id) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Argon2id) release() {
	<-h.sem
}

func decode(encoded string) (salt, key []byte, timeCost, memory uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &p); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if p == 0 || p > 255 {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}
	threads = uint8(p)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if len(key) == 0 {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}
	return salt, key, timeCost, memory, threads, nil
}
