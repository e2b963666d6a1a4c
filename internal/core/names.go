package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatName collapses whitespace and title-cases a full name using
// Portuguese casing rules: "joão  DA silva" becomes "João Da Silva".
func FormatName(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(strings.Join(fields, " "))
}

// Initials returns up to two upper-cased initials for avatars.
func Initials(name string) string {
	var initials []rune
	for _, f := range strings.Fields(name) {
		initials = append(initials, []rune(f)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}
