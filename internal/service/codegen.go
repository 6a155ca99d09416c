package service

import (
	"math/rand/v2"
	"strings"
)

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 8
)

// GenerateCode returns prefix followed by eight characters drawn uniformly
// from [A-Z0-9]. Collisions with existing codes are possible and are the
// issuer's job to handle.
func GenerateCode(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + codeLength)
	b.WriteString(strings.ToUpper(prefix))
	for range codeLength {
		b.WriteByte(codeCharset[rand.IntN(len(codeCharset))])
	}
	return b.String()
}
