package har

import "strings"

const hexDigits = "0123456789abcdef"

// Marshal returns the compact serialization of v.
//
// The output is byte-for-byte what JSON.stringify(v) produces: no
// whitespace between tokens, and strings escaped only where JSON requires
// it. In particular '<', '>', '&', U+2028 and U+2029 are written as is,
// unlike encoding/json. The redaction patterns are written against this
// exact text.
func Marshal(v *Value) []byte {
	return appendValue(nil, v, "", 0)
}

// MarshalIndent returns the serialization of v with each nested level
// indented by indent, matching JSON.stringify(v, null, indent).
// An empty indent yields the compact form.
func MarshalIndent(v *Value, indent string) []byte {
	return appendValue(nil, v, indent, 0)
}

func appendValue(dst []byte, v *Value, indent string, depth int) []byte {
	switch v.Kind() {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.boolean {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.text...)
	case KindString:
		return appendString(dst, v.text)
	case KindArray:
		if len(v.items) == 0 {
			return append(dst, "[]"...)
		}
		dst = append(dst, '[')
		for i, item := range v.items {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendNewline(dst, indent, depth+1)
			dst = appendValue(dst, item, indent, depth+1)
		}
		dst = appendNewline(dst, indent, depth)
		return append(dst, ']')
	case KindObject:
		if len(v.members) == 0 {
			return append(dst, "{}"...)
		}
		dst = append(dst, '{')
		for i, m := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendNewline(dst, indent, depth+1)
			dst = appendString(dst, m.Key)
			dst = append(dst, ':')
			if indent != "" {
				dst = append(dst, ' ')
			}
			dst = appendValue(dst, m.Value, indent, depth+1)
		}
		dst = appendNewline(dst, indent, depth)
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

func appendNewline(dst []byte, indent string, depth int) []byte {
	if indent == "" {
		return dst
	}
	dst = append(dst, '\n')
	return append(dst, strings.Repeat(indent, depth)...)
}

// appendString writes s as a JSON string literal using the escaping rules
// of JSON.stringify.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
