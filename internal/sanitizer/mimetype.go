package sanitizer

import (
	"slices"

	"github.com/nao1215/harsanitizer/internal/har"
)

// CollectMimeTypes returns the distinct string values of every "mimeType"
// member in document order.
func CollectMimeTypes(doc *har.Value) []string {
	var types []string
	har.Walk(doc, har.KeyEquals("mimeType"), func(_ *har.Value, _ string, val *har.Value) {
		s, ok := val.Str()
		if ok && !slices.Contains(types, s) {
			types = append(types, s)
		}
	})
	return types
}

// MimeMarker returns the text that replaces a body of the given content type.
func MimeMarker(mimeType string) string {
	return "[" + mimeType + " redacted]"
}

// ScrubMimeContent replaces, in place, the "text" member of every object
// whose "mimeType" equals one of targets. Objects without a "text" member
// are left alone. It returns the number of replacements.
func ScrubMimeContent(doc *har.Value, targets []string) int {
	var count int
	for _, target := range targets {
		matches := func(obj *har.Value, key string, val *har.Value) bool {
			if key != "mimeType" {
				return false
			}
			s, ok := val.Str()
			return ok && s == target && obj.Has("text")
		}
		har.Walk(doc, matches, func(obj *har.Value, _ string, _ *har.Value) {
			obj.Set("text", har.String(MimeMarker(target)))
			count++
		})
	}
	return count
}
