package har

import (
	"errors"
	"fmt"
)

// Shape and decoding errors.
var (
	// ErrTrailingData is returned by Parse when more data follows the document.
	ErrTrailingData = errors.New("unexpected data after JSON document")

	// ErrNotObject is returned when the document root is not an object.
	ErrNotObject = errors.New("document root is not an object")

	// ErrMissingLog is returned when the root has no "log" object.
	ErrMissingLog = errors.New(`document has no "log" object`)

	// ErrNoEntries is returned when "log.entries" is missing, not an array, or empty.
	ErrNoEntries = errors.New(`"log.entries" must be a non-empty array`)

	// ErrInvalidEntry is returned when an element of "log.entries" is not an object.
	ErrInvalidEntry = errors.New("HAR entry is not an object")
)

// Validate checks that doc has the minimal HAR shape the sanitizer relies
// on: an object root with a "log" object whose "entries" is a non-empty
// array of objects. Everything else in an entry is optional.
func Validate(doc *Value) error {
	if doc.Kind() != KindObject {
		return ErrNotObject
	}
	logObj := doc.Get("log")
	if logObj.Kind() != KindObject {
		return ErrMissingLog
	}
	entries := logObj.Get("entries")
	if entries.Kind() != KindArray || entries.Len() == 0 {
		return ErrNoEntries
	}
	for i, entry := range entries.Items() {
		if entry.Kind() != KindObject {
			return fmt.Errorf("%w: index %d is %s", ErrInvalidEntry, i, entry.Kind())
		}
	}
	return nil
}

// Entries returns the elements of "log.entries", or nil when the document
// does not have that shape.
func Entries(doc *Value) []*Value {
	return doc.Get("log").Get("entries").Items()
}

// RequestURL returns entry.request.url when it is a string.
func RequestURL(entry *Value) string {
	u, _ := entry.Get("request").GetString("url")
	return u
}

// ResponseContent returns entry.response.content, or nil.
func ResponseContent(entry *Value) *Value {
	content := entry.Get("response").Get("content")
	if content.Kind() != KindObject {
		return nil
	}
	return content
}
