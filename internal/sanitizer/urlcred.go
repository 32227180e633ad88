package sanitizer

import (
	"regexp"

	"github.com/nao1215/harsanitizer/internal/har"
)

// PasswordMarker replaces a password embedded in a URL.
const PasswordMarker = "[password redacted]"

// urlCredentialPattern matches "://user:password@". The user part may be
// empty and cannot contain ':', '/', '@' or '"', so a match stays inside
// a single URL.
var urlCredentialPattern = regexp.MustCompile(
	`(://[\w.%!*()` + "`" + `~'+,-]*:)([\w.%!*()` + "`" + `~'-]+)(@)`,
)

// ScrubURLCredentials replaces basic-auth passwords embedded in URLs
// anywhere in the document and returns the rewritten document together
// with the number of passwords removed.
func ScrubURLCredentials(doc *har.Value) (*har.Value, int, error) {
	text := string(har.Marshal(doc))

	n := len(urlCredentialPattern.FindAllStringIndex(text, -1))
	if n == 0 {
		return doc, 0, nil
	}

	text = urlCredentialPattern.ReplaceAllString(text, "${1}"+PasswordMarker+"${3}")
	out, err := har.Parse([]byte(text))
	if err != nil {
		return nil, 0, &SerializationError{Stage: StageURLCredentials, Err: err}
	}
	return out, n, nil
}
