package sanitizer

import "github.com/nao1215/harsanitizer/internal/har"

// Load parses data and checks that it is a HAR document with at least one
// entry. Any failure is returned as an *InvalidInputError.
func Load(data []byte) (*har.Value, error) {
	doc, err := har.Parse(data)
	if err != nil {
		return nil, &InvalidInputError{Stage: StageLoad, Err: err}
	}
	if err := har.Validate(doc); err != nil {
		return nil, &InvalidInputError{Stage: StageLoad, Err: err}
	}
	return doc, nil
}
