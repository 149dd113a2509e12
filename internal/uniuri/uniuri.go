// Package uniuri generates random strings from crypto/rand suitable for
// session keys, backup codes and other security tokens.
package uniuri

import (
	"crypto/rand"
)

const (
	// StdLen is a standard length of uniuri string to achieve ~95 bits of entropy.
	StdLen = 16

	// SessionKeyLen is the length used for session keys (~238 bits of entropy).
	SessionKeyLen = 40
)

// StdChars is a set of standard characters allowed in uniuri string.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a new random string of the standard length, consisting of
// standard characters.
func New() string {
	return NewLenChars(StdLen, StdChars)
}

// NewLen returns a new random string of the provided length, consisting of
// standard characters.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a new random string of the provided length, consisting
// of the provided byte slice of allowed characters (maximum 256).
// Rejection sampling avoids modulo bias.
func NewLenChars(length int, chars []byte) string {
	if length == 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	// maxRb is the largest byte value that maps uniformly onto the charset.
	maxRb := 255 - (256 % clen)

	out := make([]byte, length)
	buf := make([]byte, length+length/2)

	i := 0

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			c := int(rb)
			if c > maxRb {
				continue
			}

			out[i] = chars[c%clen]
			i++

			if i == length {
				return string(out)
			}
		}
	}
}
