// Package passgen generates random passwords and scores password strength.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?"

	DefaultLength = 16
	MinLength     = 4
	MaxLength     = 256
)

var (
	ErrLength       = fmt.Errorf("password length must be between %d and %d", MinLength, MaxLength)
	ErrEmptyCharset = errors.New("no characters left to generate from")
)

// Options selects the character classes of a generated password.
// The zero value is not useful; start from DefaultOptions.
type Options struct {
	Length  int
	Lower   bool
	Upper   bool
	Digits  bool
	Symbols bool
	Exclude string // characters never to emit
}

// DefaultOptions enables every class at the default length
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Lower: true, Upper: true, Digits: true, Symbols: true}
}

// Charset returns the characters Generate picks from
func (o Options) Charset() string {
	var b strings.Builder
	if o.Lower {
		b.WriteString(Lowercase)
	}
	if o.Upper {
		b.WriteString(Uppercase)
	}
	if o.Digits {
		b.WriteString(Digits)
	}
	if o.Symbols {
		b.WriteString(Symbols)
	}

	if o.Exclude == "" {
		return b.String()
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(o.Exclude, r) {
			return -1
		}
		return r
	}, b.String())
}

// Generate returns a password drawn uniformly from the selected classes
// using crypto/rand
func Generate(o Options) (string, error) {
	if o.Length < MinLength || o.Length > MaxLength {
		return "", ErrLength
	}
	charset := o.Charset()
	if charset == "" {
		return "", ErrEmptyCharset
	}

	limit := big.NewInt(int64(len(charset)))
	out := make([]byte, o.Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// Strength scores a password from 0 to 100. Length earns up to 40 points
// and each character class present earns 15.
func Strength(password string) int {
	if password == "" {
		return 0
	}

	score := 0
	n := utf8.RuneCountInString(password)
	if n >= 8 {
		score += 20
	}
	if n >= 12 {
		score += 10
	}
	if n >= 16 {
		score += 10
	}

	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	for _, has := range []bool{lower, upper, digit, other} {
		if has {
			score += 15
		}
	}

	return min(score, 100)
}

// Label names a Strength score
func Label(score int) string {
	switch {
	case score < 40:
		return "Weak"
	case score < 70:
		return "Medium"
	default:
		return "Strong"
	}
}
