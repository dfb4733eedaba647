package naming

import (
	"regexp"
	"strings"
)

// nonWordRegex matches every character that is not allowed in canonical
// names: anything outside letters, digits and underscores.
var nonWordRegex = regexp.MustCompile(`[^A-Za-z0-9_]`)

// AppName canonicalizes a project name. Internal spaces become underscores,
// every other non-alphanumeric character is dropped.
func AppName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return nonWordRegex.ReplaceAllString(name, "")
}

// FileName canonicalizes an artifact name into its on-disk form: lower-case,
// stripped of path separators and punctuation, underscores kept.
func FileName(name string) string {
	return strings.ToLower(clean(name))
}

// Identifier converts an artifact name into a camel-case type identifier,
// e.g. "test_controller" becomes "TestController".
func Identifier(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(clean(name), "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

func clean(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return nonWordRegex.ReplaceAllString(name, "")
}
