package har

import (
	"errors"
	"strings"
	"testing"
)

// TestParseMarshalRoundTrip verifies that compact input is reproduced exactly.
func TestParseMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "nested containers", input: `{"b":1,"a":[true,null,"x"],"c":{}}`},
		{name: "number text is preserved", input: `{"a":1.50,"b":-0,"c":1e10,"d":12345678901234567890}`},
		{name: "html characters are not escaped", input: `{"html":"<a href=\"x\">&amp;</a>"}`},
		{name: "escaped control characters", input: `{"s":"line\nbreak\ttab\u0001\\"}`},
		{name: "empty array root", input: `[]`},
		{name: "scalar root", input: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := string(Marshal(v)); got != tt.input {
				t.Errorf("round trip mismatch:\n got: %s\nwant: %s", got, tt.input)
			}
		})
	}
}

// TestParse covers whitespace, duplicates and malformed input.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("drops insignificant whitespace", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte("{ \"a\" : [ 1 , 2 ] ,\n \"b\" : null }\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := string(Marshal(v)); got != `{"a":[1,2],"b":null}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("duplicate key keeps first position and last value", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := string(Marshal(v)); got != `{"a":3,"b":2}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("unicode escapes are decoded", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(`"\u003cscript\u003e"`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := string(Marshal(v)); got != `"<script>"` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("second document is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(`{} {}`))
		if !errors.Is(err, ErrTrailingData) {
			t.Errorf("expected ErrTrailingData, got %v", err)
		}
	})

	errorInputs := map[string]string{
		"empty input":        ``,
		"garbage after root": `{}x`,
		"unterminated":       `{"a":[1,2}`,
		"bare word":          `hello`,
		"missing value":      `{"a":}`,
	}
	for name, input := range errorInputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(input)); err == nil {
				t.Errorf("expected error for %q", input)
			}
		})
	}
}

// TestMarshalStringEscaping checks escaping rules against JSON.stringify output.
func TestMarshalStringEscaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "quote and backslash", in: `a"b\c`, want: `"a\"b\\c"`},
		{name: "short escapes", in: "\b\f\n\r\t", want: `"\b\f\n\r\t"`},
		{name: "other controls use lower-case hex", in: "\x00\x1f", want: `"\u0000\u001f"`},
		{name: "html is literal", in: "<>&", want: `"<>&"`},
		{name: "line separators are literal", in: "\u2028\u2029", want: "\"\u2028\u2029\""},
		{name: "non ascii is literal", in: "héllo 世界", want: `"héllo 世界"`},
		{name: "DEL is literal", in: "\x7f", want: "\"\x7f\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(Marshal(String(tt.in))); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// TestMarshalIndent verifies the two-space layout of JSON.stringify(v, null, 2).
func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	v, err := Parse([]byte(`{"a":[1,{"b":[]}],"c":{},"d":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		`{`,
		`  "a": [`,
		`    1,`,
		`    {`,
		`      "b": []`,
		`    }`,
		`  ],`,
		`  "c": {},`,
		`  "d": "x"`,
		`}`,
	}, "\n")

	if got := string(MarshalIndent(v, "  ")); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	t.Run("empty indent is compact", func(t *testing.T) {
		t.Parallel()
		if got := string(MarshalIndent(v, "")); got != string(Marshal(v)) {
			t.Errorf("got %s", got)
		}
	})
}

// TestValueAccessors tests object and array helpers.
func TestValueAccessors(t *testing.T) {
	t.Parallel()

	t.Run("set replaces in place and appends new keys", func(t *testing.T) {
		t.Parallel()

		obj := Object(Member{Key: "a", Value: Number("1")}, Member{Key: "b", Value: Number("2")})
		obj.Set("a", String("x"))
		obj.Set("c", Bool(true))

		if got := string(Marshal(obj)); got != `{"a":"x","b":2,"c":true}` {
			t.Errorf("got %s", got)
		}
		if !obj.Has("c") || obj.Has("z") {
			t.Error("Has returned wrong result")
		}
		if keys := obj.Keys(); strings.Join(keys, ",") != "a,b,c" {
			t.Errorf("keys = %v", keys)
		}
	})

	t.Run("nil value behaves as null", func(t *testing.T) {
		t.Parallel()

		var v *Value
		if v.Kind() != KindNull {
			t.Errorf("kind = %s", v.Kind())
		}
		if v.Get("x") != nil || v.Len() != 0 || v.IsContainer() {
			t.Error("nil value should be an empty leaf")
		}
		if got := string(Marshal(v)); got != "null" {
			t.Errorf("got %s", got)
		}
	})

	t.Run("typed getters reject other kinds", func(t *testing.T) {
		t.Parallel()

		if _, ok := Number("1").Str(); ok {
			t.Error("Str on number should fail")
		}
		if _, ok := String("1").NumberText(); ok {
			t.Error("NumberText on string should fail")
		}
		if b, ok := Bool(true).BoolValue(); !ok || !b {
			t.Error("BoolValue should return true")
		}
	})
}

// TestWalk covers visiting order, unconditional descent and in-place mutation.
func TestWalk(t *testing.T) {
	t.Parallel()

	doc := `{"a":{"b":1,"c":[{"d":2},{"e":null}]},"f":"x"}`

	t.Run("visits every member depth first", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var visited []string
		Walk(v,
			func(_ *Value, _ string, _ *Value) bool { return true },
			func(_ *Value, key string, _ *Value) { visited = append(visited, key) },
		)

		if got := strings.Join(visited, ","); got != "a,b,c,d,e,f" {
			t.Errorf("visited %s", got)
		}
	})

	t.Run("descends even when predicate is false", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var hits int
		Walk(v, KeyEquals("e"), func(_ *Value, _ string, _ *Value) { hits++ })

		if hits != 1 {
			t.Errorf("expected 1 hit, got %d", hits)
		}
	})

	t.Run("action replacing current member still descends into old value", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(`{"x":{"y":{"z":1}}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var seen []string
		Walk(v, func(_ *Value, _ string, _ *Value) bool { return true },
			func(obj *Value, key string, _ *Value) {
				seen = append(seen, key)
				if key == "x" {
					obj.Set("x", String("gone"))
				}
			})

		if got := strings.Join(seen, ","); got != "x,y,z" {
			t.Errorf("seen %s", got)
		}
		if got := string(Marshal(v)); got != `{"x":"gone"}` {
			t.Errorf("document = %s", got)
		}
	})

	t.Run("action may rewrite sibling members", func(t *testing.T) {
		t.Parallel()

		v, err := Parse([]byte(`[{"mimeType":"text/html","text":"<p>hi</p>"}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		Walk(v, KeyEquals("mimeType"), func(obj *Value, _ string, _ *Value) {
			obj.Set("text", String("[redacted]"))
		})

		if got := string(Marshal(v)); got != `[{"mimeType":"text/html","text":"[redacted]"}]` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("scalars and nil are leaves", func(t *testing.T) {
		t.Parallel()

		called := false
		act := func(_ *Value, _ string, _ *Value) { called = true }
		always := func(_ *Value, _ string, _ *Value) bool { return true }

		Walk(nil, always, act)
		Walk(String("x"), always, act)
		Walk(Null(), always, act)

		if called {
			t.Error("action should not run for leaves")
		}
	})
}

// TestValidate tests the HAR shape check.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "valid minimal har", input: `{"log":{"entries":[{"request":{}}]}}`, wantErr: nil},
		{name: "array root", input: `[]`, wantErr: ErrNotObject},
		{name: "missing log", input: `{"foo":{}}`, wantErr: ErrMissingLog},
		{name: "log is a string", input: `{"log":"x"}`, wantErr: ErrMissingLog},
		{name: "missing entries", input: `{"log":{}}`, wantErr: ErrNoEntries},
		{name: "empty entries", input: `{"log":{"entries":[]}}`, wantErr: ErrNoEntries},
		{name: "entries is an object", input: `{"log":{"entries":{}}}`, wantErr: ErrNoEntries},
		{name: "entry is not an object", input: `{"log":{"entries":[1]}}`, wantErr: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			err = Validate(v)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestEntryHelpers tests the entry accessors.
func TestEntryHelpers(t *testing.T) {
	t.Parallel()

	v, err := Parse([]byte(`{"log":{"entries":[
		{"request":{"url":"https://example.com/a"},"response":{"content":{"mimeType":"text/html"}}},
		{"request":{"url":5}}
	]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := Entries(v)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := RequestURL(entries[0]); got != "https://example.com/a" {
		t.Errorf("url = %q", got)
	}
	if got := RequestURL(entries[1]); got != "" {
		t.Errorf("non-string url should be empty, got %q", got)
	}
	if ResponseContent(entries[0]) == nil {
		t.Error("expected content object")
	}
	if ResponseContent(entries[1]) != nil {
		t.Error("expected nil content")
	}
}
