package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUserText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeUserText("hello world", 0))
	assert.Equal(t, "rm -rf /", SanitizeUserText("rm -rf /; echo pwned", 8))
	assert.Equal(t, "drop table", SanitizeUserText("drop{} [table]<>", 0))
	assert.Equal(t, "nonewlines", SanitizeUserText("no\nnew\rlines", 0))
	assert.Equal(t, "", SanitizeUserText("", 10))
}

func TestSanitizeUserTextTruncates(t *testing.T) {
	assert.Equal(t, "abc", SanitizeUserText("abcdef", 3))
	// truncation counts runes, not bytes
	assert.Equal(t, "héllo", SanitizeUserText("héllo world", 5))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "user@example.com", NormalizeEmail("user@example.com"))
}
