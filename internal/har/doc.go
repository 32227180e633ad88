// Package har provides the document model used by the sanitizer.
//
// A HAR capture is handled as a generic JSON tree rather than as typed
// HAR 1.2 structs. The redaction stages rewrite the serialized text of the
// whole document, so the tree has to reproduce the input faithfully:
// object members keep their order, numbers keep their original text, and
// the serializer emits exactly what ECMAScript JSON.stringify emits for the
// same tree.
//
// The package offers:
//   - Value, a tagged union over object, array, string, number, bool and null
//   - Parse, which decodes one JSON document into a Value
//   - Marshal and MarshalIndent, the compact and indented serializers
//   - Walk, a depth-first visitor driven by a predicate and an action
//   - Validate, the minimal HAR shape check (a non-empty log.entries array)
package har
