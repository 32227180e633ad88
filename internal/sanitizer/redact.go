package sanitizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/harsanitizer/internal/har"
)

// Redaction summarizes the substitutions made for one field name.
// It never carries the values themselves.
type Redaction struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`

	// Values is the number of distinct values registered under the name.
	Values int `json:"values"`

	// Occurrences is the number of spans replaced in the document text.
	Occurrences int `json:"occurrences"`
}

// Marker returns the text that replaces a value of the named field.
func Marker(name string) string {
	return "[" + name + " redacted]"
}

// target is one field selected for redaction.
type target struct {
	category Category
	name     string
	values   []string
}

// RedactKeyedValues erases every value registered in elems under a name
// that matches one of words, ignoring case.
//
// Each value is replaced in the serialized document by two global
// substitutions. The forward one covers the name followed, within the same
// record, by `"value":"` or '=' and the value. The backward one covers a
// `"value":"` record whose "name" member comes later in the same record.
// Categories are processed in the order of Categories and names in the
// order they were extracted; each substitution sees the text produced by
// the previous ones. Values serialized differently from their extracted
// form are not matched and stay in the document.
func RedactKeyedValues(doc *har.Value, words []string, elems *ExtractedElements) (*har.Value, []Redaction, error) {
	targets := selectTargets(words, elems)
	text := string(har.Marshal(doc))

	redacted, redactions, err := applyTargets(text, targets)
	if err != nil {
		return nil, nil, err
	}

	out, err := har.Parse([]byte(redacted))
	if err != nil {
		serr := &SerializationError{Stage: StageRedact, Err: err}
		if t, ok := locateBreakingTarget(text, targets); ok {
			serr.Category = t.category
			serr.Field = t.name
		}
		return nil, nil, serr
	}
	return out, redactions, nil
}

func selectTargets(words []string, elems *ExtractedElements) []target {
	wanted := make(map[string]struct{}, len(words))
	for _, w := range words {
		wanted[Lower(w)] = struct{}{}
	}

	var targets []target
	for _, c := range Categories() {
		fields := elems.Fields(c)
		for _, name := range fields.Names() {
			if _, ok := wanted[Lower(name)]; !ok {
				continue
			}
			targets = append(targets, target{category: c, name: name, values: fields.Values(name)})
		}
	}
	return targets
}

func applyTargets(text string, targets []target) (string, []Redaction, error) {
	redactions := make([]Redaction, 0, len(targets))
	for _, t := range targets {
		r := Redaction{Category: t.category, Name: t.name, Values: len(t.values)}
		for _, value := range t.values {
			var n int
			var err error
			text, n, err = redactValue(text, t.name, value)
			if err != nil {
				return "", nil, &SerializationError{Stage: StageRedact, Category: t.category, Field: t.name, Err: err}
			}
			r.Occurrences += n
		}
		redactions = append(redactions, r)
	}
	return text, redactions, nil
}

// locateBreakingTarget replays the substitutions one field at a time and
// returns the first field after which the text no longer parses.
func locateBreakingTarget(text string, targets []target) (target, bool) {
	for _, t := range targets {
		next, _, err := applyTargets(text, []target{t})
		if err != nil {
			return t, true
		}
		if _, err := har.Parse([]byte(next)); err != nil {
			return t, true
		}
		text = next
	}
	return target{}, false
}

// redactValue applies the forward and backward substitutions for one
// name/value pair and returns the new text and the number of replaced spans.
func redactValue(text, name, value string) (string, int, error) {
	quotedName := regexp.QuoteMeta(name)
	quotedValue := regexp.QuoteMeta(value)
	marker := strings.ReplaceAll(Marker(name), "$", "$$")

	forward, err := regexp.Compile(
		`(` + quotedName + `[^{}\[\]]*)("value":"|=)(` + quotedValue + `)(",|"}|"]|;|&)`,
	)
	if err != nil {
		return "", 0, fmt.Errorf("compile forward pattern: %w", err)
	}
	backward, err := regexp.Compile(
		`("value":")(` + quotedValue + `)([^{}\[\]]*"name":"` + quotedName + `")`,
	)
	if err != nil {
		return "", 0, fmt.Errorf("compile backward pattern: %w", err)
	}

	n := len(forward.FindAllStringIndex(text, -1))
	text = forward.ReplaceAllString(text, "${1}${2}"+marker+"${4}")

	n += len(backward.FindAllStringIndex(text, -1))
	text = backward.ReplaceAllString(text, "${1}"+marker+"${3}")

	return text, n, nil
}
