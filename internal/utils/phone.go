package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var egyptianMobile = regexp.MustCompile(`^(010|011|012|015)\d{8}$`)

// NormalizePhone drops every non-digit character.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

func IsValidPhone(phone string) bool {
	return egyptianMobile.MatchString(NormalizePhone(phone))
}
