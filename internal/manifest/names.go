package manifest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KebabCase converts a module name to its canonical form:
// "UserProfile", "user_profile" and "User Profile" all become "user-profile".
// Runs of capitals are kept together, so "HTTPServer" becomes "http-server".
func KebabCase(name string) string {
	words := splitWords(name)
	lower := cases.Lower(language.Und)
	for i, w := range words {
		words[i] = lower.String(w)
	}
	return strings.Join(words, "-")
}

// PascalCase converts a kebab-case name to PascalCase: "user-profile"
// becomes "UserProfile".
func PascalCase(name string) string {
	title := cases.Title(language.English)
	var b strings.Builder
	for _, w := range splitWords(name) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// DefaultPath is the module path used when a manifest entry has none.
func DefaultPath(name string) string {
	kebab := KebabCase(name)
	return "./" + PascalCase(kebab) + "/" + kebab + ".module"
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}
