package uniuri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLenChars(t *testing.T) {
	testCases := []struct {
		name   string
		length int
		chars  []byte
	}{
		{name: "standard length", length: StdLen, chars: StdChars},
		{name: "session key length", length: SessionKeyLen, chars: StdChars},
		{name: "binary charset", length: 64, chars: []byte("01")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			allowed := make(map[byte]bool, len(tc.chars))
			for _, c := range tc.chars {
				allowed[c] = true
			}

			s := NewLenChars(tc.length, tc.chars)
			assert.Len(t, s, tc.length)

			for i := 0; i < len(s); i++ {
				assert.True(t, allowed[s[i]], "unexpected character %q", s[i])
			}
		})
	}
}

func TestNewLenCharsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewLen(SessionKeyLen)
		assert.False(t, seen[s], "duplicate random string generated")
		seen[s] = true
	}
}

func TestNewLenCharsZeroLength(t *testing.T) {
	assert.Empty(t, NewLenChars(0, StdChars))
}

func TestNewLenCharsBadCharset(t *testing.T) {
	assert.Panics(t, func() { NewLenChars(10, []byte("a")) })
}
