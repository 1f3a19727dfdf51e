package utils

import (
	"regexp"
	"strings"
)

// Characters never accepted in user supplied free-text fields.
const userForbiddenCharacters = ";|?!`$\r\t\n{}[]<>\\"

var userForbiddenPattern = regexp.MustCompile("[" + regexp.QuoteMeta(userForbiddenCharacters) + "]")

// SanitizeUserText removes suspicious characters from user free-text fields
// and truncates the result to maxLength runes (0 means no limit).
func SanitizeUserText(value string, maxLength int) string {
	if value == "" {
		return value
	}
	res := strings.TrimSpace(userForbiddenPattern.ReplaceAllString(value, ""))
	if maxLength > 0 {
		runes := []rune(res)
		if len(runes) > maxLength {
			res = string(runes[:maxLength])
		}
	}
	return strings.TrimSpace(res)
}

// NormalizeEmail lowercases and trims an email address so lookups and
// uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
