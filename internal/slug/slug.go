// ABOUTME: Slug validation against the custom whitelist and random slug generation
// ABOUTME: Generation draws uniformly from an unambiguous alphabet via an injectable source

package slug

import (
	"math/rand/v2"
	"strings"
)

const (
	// Alphabet holds the symbols used for generated slugs.
	Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	// Whitelist holds the symbols accepted in user-supplied slugs.
	Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultLength is the generated slug length when none is configured.
	DefaultLength = 5
)

// Source supplies uniform integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource adapts the package-level math/rand/v2 functions, which are safe for
// concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator produces random slugs from Alphabet.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator drawing from src. A nil src uses the process-wide source.
// The Generator is only as safe for concurrent use as src is.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

// Generate returns n symbols drawn independently from Alphabet.
func (g *Generator) Generate(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(Alphabet[g.src.IntN(len(Alphabet))])
	}
	return b.String()
}

var defaultGenerator = NewGenerator(nil)

// Generate returns n random symbols from Alphabet using the process-wide source.
func Generate(n int) string {
	return defaultGenerator.Generate(n)
}

// IsValidCustom reports whether every byte of s is an ASCII letter or digit.
// The empty string is vacuously valid; callers treat it as "no slug supplied".
func IsValidCustom(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isWhitelisted(s[i]) {
			return false
		}
	}
	return true
}

func isWhitelisted(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}
