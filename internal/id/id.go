// Package id generates short prefixed identifiers for sessions and requests.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixSession = "ses"
	PrefixRequest = "req"
)

const size = 16

// Generate returns prefix + "-" + a 16 character URL-safe nanoid.
func Generate(prefix string) (string, error) {
	raw, err := gonanoid.New(size)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + "-" + raw, nil
}

// MustGenerate is Generate that panics when the system cannot supply entropy.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(err)
	}
	return v
}

// HasPrefix reports whether v was generated with prefix.
func HasPrefix(v, prefix string) bool {
	rest, ok := strings.CutPrefix(v, prefix+"-")
	return ok && len(rest) == size
}
