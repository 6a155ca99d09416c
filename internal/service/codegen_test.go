package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCodeShape(t *testing.T) {
	for range 200 {
		code := GenerateCode("SAVE")
		assert.True(t, strings.HasPrefix(code, "SAVE"))
		assert.Len(t, code, len("SAVE")+codeLength)
		for _, ch := range code[len("SAVE"):] {
			assert.Contains(t, codeCharset, string(ch))
		}
	}
}

func TestGenerateCodeNoPrefix(t *testing.T) {
	code := GenerateCode("")
	assert.Len(t, code, codeLength)
}

func TestGenerateCodeUppercasesPrefix(t *testing.T) {
	code := GenerateCode("welcome")
	assert.True(t, strings.HasPrefix(code, "WELCOME"))
}
