package sanitizer

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/harsanitizer/internal/har"
)

// defaultWordList holds field names that carry credentials or session
// state in common sign-in and API flows.
var defaultWordList = []string{
	"state",
	"shdf",
	"usg",
	"password",
	"email",
	"code",
	"code_verifier",
	"client_secret",
	"client_id",
	"token",
	"access_token",
	"authenticity_token",
	"id_token",
	"appID",
	"challenge",
	"facetID",
	"assertion",
	"fcParams",
	"serverData",
	"Authorization",
	"auth",
	"x-client-data",
	"SAMLRequest",
	"SAMLResponse",
}

// defaultContentList holds response content types whose bodies are
// replaced wholesale.
var defaultContentList = []string{
	"application/javascript",
	"text/javascript",
	"text/html",
	"text/css",
	"text/xml",
}

// DefaultWordList returns a copy of the built-in word list.
func DefaultWordList() []string {
	return slices.Clone(defaultWordList)
}

// DefaultContentList returns a copy of the built-in content type list.
func DefaultContentList() []string {
	return slices.Clone(defaultContentList)
}

// MergeLists concatenates lists, dropping empty entries and exact
// duplicates. The first occurrence of each entry keeps its position and case.
func MergeLists(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, s := range list {
			if strings.TrimSpace(s) == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	return merged
}

// TrimWordlist returns the lower-cased words that occur somewhere in the
// serialized document, compared case-insensitively. Candidate order is
// kept and words that lower-case to the same string are reported once.
func TrimWordlist(doc *har.Value, words []string) []string {
	text := Lower(string(har.Marshal(doc)))

	trimmed := make([]string, 0, len(words))
	for _, w := range words {
		lw := Lower(w)
		if lw == "" || slices.Contains(trimmed, lw) {
			continue
		}
		if strings.Contains(text, lw) {
			trimmed = append(trimmed, lw)
		}
	}
	return trimmed
}

// Lower applies the Unicode lower-casing used to compare field names with
// words. A Caser is stateful, so a new one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
