// Package idgen produces the 24-digit reference identifiers attached to
// users and SOS dispatches.
package idgen

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

const Length = 24

var pattern = regexp.MustCompile(`^\d{24}$`)

// New returns Length uniformly random decimal digits.
func New() (string, error) {
	var sb strings.Builder
	sb.Grow(Length)

	buf := make([]byte, Length)
	for sb.Len() < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			// 250 is the largest multiple of 10 below 256
			if b >= 250 {
				continue
			}
			sb.WriteByte('0' + b%10)
			if sb.Len() == Length {
				break
			}
		}
	}
	return sb.String(), nil
}

func MustNew() string {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

func Valid(id string) bool {
	return pattern.MatchString(id)
}

// Format splits a valid id into four space separated groups of six.
// Invalid ids are returned unchanged.
func Format(id string) string {
	if !Valid(id) {
		return id
	}
	return id[0:6] + " " + id[6:12] + " " + id[12:18] + " " + id[18:24]
}

// Shorten keeps the first and last six digits.
func Shorten(id string) string {
	if !Valid(id) {
		return id
	}
	return id[:6] + "..." + id[18:]
}
