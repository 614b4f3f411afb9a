package migration

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DeriveName resolves a user's first and last name: explicit CSV fields
// when present, otherwise a heuristic split of the email local-part on
// common separators with each token capitalized. Single-token local-parts
// become first-name-only.
func DeriveName(row Row) (string, string) {
	first := strings.TrimSpace(row.FirstName)
	last := strings.TrimSpace(row.LastName)
	if first != "" || last != "" {
		return first, last
	}

	local := row.Email
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	tokens := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(tokens) == 0 {
		return "", ""
	}

	first = titleCaser.String(strings.ToLower(tokens[0]))
	if len(tokens) == 1 {
		return first, ""
	}
	last = titleCaser.String(strings.ToLower(tokens[len(tokens)-1]))
	return first, last
}
