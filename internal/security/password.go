package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

func HashPassword(password string) ([]byte, error) {
	return HashPasswordWithParams(password, defaultParams)
}

func HashPasswordWithParams(password string, params Argon2Params) ([]byte, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	encoded := base64.StdEncoding.EncodeToString(hash)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	result := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		params.Time, params.Memory, params.Threads, encodedSalt, encoded)

	return []byte(result), nil
}

// VerifyPassword reports whether password matches encodedHash. A mismatch is
// (false, nil); an error means the stored hash could not be processed.
func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	// Encoded form: $argon2id$v=19$t=T,m=M,p=P$SALT$HASH (leading $ yields an
	// empty first field).
	fields := strings.Split(string(encodedHash), "$")
	if len(fields) != 6 || fields[0] != "" {
		return false, fmt.Errorf("parse hash: malformed encoding")
	}
	if fields[1] != "argon2id" {
		return false, fmt.Errorf("parse hash: unsupported algorithm %q", fields[1])
	}
	if fields[2] != "v=19" {
		return false, fmt.Errorf("parse hash: unsupported version %q", fields[2])
	}

	var (
		time    uint32
		memory  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(fields[3], "t=%d,m=%d,p=%d", &time, &memory, &threads); err != nil {
		return false, fmt.Errorf("parse hash: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(fields[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.StdEncoding.DecodeString(fields[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// PasswordStrength is the result of evaluating a candidate password against
// the strength policy: at least 4 of the 5 criteria must hold.
type PasswordStrength struct {
	Valid bool
	Score int
	Unmet []string
}

const minPasswordScore = 4

// CheckPasswordStrength evaluates the 5 criteria (length >= 8, uppercase,
// lowercase, digit, symbol) and enumerates the unmet ones.
func CheckPasswordStrength(password string) PasswordStrength {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	criteria := []struct {
		met  bool
		name string
	}{
		{len(password) >= 8, "at least 8 characters"},
		{hasUpper, "an uppercase letter"},
		{hasLower, "a lowercase letter"},
		{hasDigit, "a digit"},
		{hasSymbol, "a symbol"},
	}

	result := PasswordStrength{}
	for _, c := range criteria {
		if c.met {
			result.Score++
		} else {
			result.Unmet = append(result.Unmet, "missing "+c.name)
		}
	}
	result.Valid = result.Score >= minPasswordScore
	return result
}

// StrengthMessage renders the policy verdict for API responses.
func StrengthMessage(s PasswordStrength) string {
	if s.Valid {
		return "password is strong"
	}
	return fmt.Sprintf("password too weak (%d/5 criteria met, minimum %d): %s",
		s.Score, minPasswordScore, strings.Join(s.Unmet, ", "))
}
