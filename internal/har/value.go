package har

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is the JSON null literal. A nil *Value is also treated as null.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a JSON number kept as its source text.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is an ordered list of key/value members.
	KindObject
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a node of a JSON document.
//
// Objects store their members in a slice so that serialization reproduces
// the order in which keys were read or inserted.
type Value struct {
	kind    Kind
	text    string // string contents or raw number text
	boolean bool
	items   []*Value
	members []Member
}

// Null returns a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolean: b}
}

// Number returns a number value with the given literal text.
// The text is written back unchanged by the serializers, so callers must
// pass a valid JSON number.
func Number(raw string) *Value {
	return &Value{kind: KindNumber, text: raw}
}

// String returns a string value.
func String(s string) *Value {
	return &Value{kind: KindString, text: s}
}

// Array returns an array holding the given items.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Object returns an object holding the given members in order.
func Object(members ...Member) *Value {
	return &Value{kind: KindObject, members: members}
}

// Kind returns the variant of v. A nil value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsContainer reports whether v is an object or an array.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == KindObject || k == KindArray
}

// Str returns the contents of a string value.
// The second result is false for any other kind.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.text, true
}

// NumberText returns the literal text of a number value.
func (v *Value) NumberText() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.text, true
}

// BoolValue returns the contents of a boolean value.
func (v *Value) BoolValue() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.boolean, true
}

// Len returns the number of items of an array or members of an object.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Items returns the items of an array, or nil for other kinds.
// The returned slice aliases the array's storage.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Members returns the members of an object, or nil for other kinds.
// The returned slice aliases the object's storage.
func (v *Value) Members() []Member {
	if v.Kind() != KindObject {
		return nil
	}
	return v.members
}

// Append adds items to the end of an array. It is a no-op for other kinds.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != KindArray {
		return
	}
	v.items = append(v.items, items...)
}

// Get returns the value stored under key, or nil when v is not an object
// or has no such key.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindObject {
		return nil
	}
	for i := range v.members {
		if v.members[i].Key == key {
			return v.members[i].Value
		}
	}
	return nil
}

// Has reports whether the object v contains key.
func (v *Value) Has(key string) bool {
	if v.Kind() != KindObject {
		return false
	}
	for i := range v.members {
		if v.members[i].Key == key {
			return true
		}
	}
	return false
}

// Set stores val under key. An existing member keeps its position and has
// its value replaced; a new key is appended. Set is a no-op when v is not
// an object.
func (v *Value) Set(key string, val *Value) {
	if v.Kind() != KindObject {
		return
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Keys returns the member keys of an object in order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// GetString is a shorthand for Get followed by Str.
func (v *Value) GetString(key string) (string, bool) {
	return v.Get(key).Str()
}
