package util

import (
	"fmt"
	"regexp"
	"strings"
)

var reUnsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// KeywordQuery turns free text into a CMR wildcard keyword query:
// "aboveground biomass" becomes "aboveground* biomass*".
func KeywordQuery(input string) string {
	fields := strings.Fields(input)
	for i, f := range fields {
		fields[i] = f + "*"
	}
	return strings.Join(fields, " ")
}

// FileName returns "<id>.json" when id is a single safe path element.
func FileName(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return "", fmt.Errorf("identifier %q cannot be used as a file name", id)
	}
	return id + ".json", nil
}

// SanitizeName replaces spaces with '_', strips everything except letters,
// digits, '_' and '-', and truncates to max bytes. Sync uses it to turn
// free-text keywords into stable metadata keys.
func SanitizeName(input string, max int) string {
	out := reUnsafeName.ReplaceAllString(strings.ReplaceAll(strings.TrimSpace(input), " ", "_"), "")
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
