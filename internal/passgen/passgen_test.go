package passgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Defaults(t *testing.T) {
	pw, err := Generate(DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, pw, DefaultLength)

	charset := DefaultOptions().Charset()
	for _, r := range pw {
		assert.True(t, strings.ContainsRune(charset, r), "unexpected %q", r)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		pw, err := Generate(DefaultOptions())
		require.NoError(t, err)
		assert.False(t, seen[pw], "duplicate password %q", pw)
		seen[pw] = true
	}
}

func TestGenerate_Classes(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		allowed string
	}{
		{"digits only", Options{Length: 32, Digits: true}, Digits},
		{"letters", Options{Length: 32, Lower: true, Upper: true}, Lowercase + Uppercase},
		{"symbols", Options{Length: 32, Symbols: true}, Symbols},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pw, err := Generate(tt.opts)
			require.NoError(t, err)
			assert.Len(t, pw, 32)
			for _, r := range pw {
				assert.True(t, strings.ContainsRune(tt.allowed, r), "unexpected %q", r)
			}
		})
	}
}

func TestGenerate_Exclude(t *testing.T) {
	o := Options{Length: 200, Digits: true, Exclude: "0123"}
	pw, err := Generate(o)
	require.NoError(t, err)
	assert.NotContains(t, pw, "0")
	assert.NotContains(t, pw, "3")
	assert.Equal(t, "456789", o.Charset())
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(Options{Length: 3, Lower: true})
	assert.ErrorIs(t, err, ErrLength)

	_, err = Generate(Options{Length: MaxLength + 1, Lower: true})
	assert.ErrorIs(t, err, ErrLength)

	_, err = Generate(Options{Length: 16})
	assert.ErrorIs(t, err, ErrEmptyCharset)

	_, err = Generate(Options{Length: 16, Digits: true, Exclude: Digits})
	assert.ErrorIs(t, err, ErrEmptyCharset)
}

func TestStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		label    string
	}{
		{"", 0, "Weak"},
		{"abc", 15, "Weak"},
		{"abcdefgh", 35, "Weak"},
		{"abcdefgh1", 50, "Medium"},
		{"Abcdefgh1234", 75, "Strong"},
		{"Abcdefgh1234!@#$", 100, "Strong"},
		{"Abcdefgh1234!@#$xyz", 100, "Strong"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := Strength(tt.password)
			assert.Equal(t, tt.score, got)
			assert.Equal(t, tt.label, Label(got))
		})
	}
}

func TestLabelBoundaries(t *testing.T) {
	assert.Equal(t, "Weak", Label(39))
	assert.Equal(t, "Medium", Label(40))
	assert.Equal(t, "Medium", Label(69))
	assert.Equal(t, "Strong", Label(70))
}
