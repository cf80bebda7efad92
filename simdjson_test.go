package simdjson

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		js      string
		want    string
		wantErr bool
	}{
		{
			name: "nested object and array",
			js:   `{"a":1,"b":[true,false,null],"c":{"d":"e"}}`,
			want: `{"a":1,"b":[true,false,null],"c":{"d":"e"}}`,
		},
		{
			name: "escaped string",
			js:   `{"msg":"line1\nline2\ttabbed"}`,
			want: `{"msg":"line1\nline2\ttabbed"}`,
		},
		{
			// Numbers round-trip through their normalized form, not their
			// original literal spelling: -3.25e2 parses to -325 and is
			// reserialized as a plain integer.
			name: "negative and float",
			js:   `[-1,2.5,-3.25e2]`,
			want: `[-1,2.5,-325]`,
		},
		{
			name:    "truncated object",
			js:      `{"a":1`,
			wantErr: true,
		},
		{
			name:    "bad literal",
			js:      `{"a":tru}`,
			wantErr: true,
		},
		{
			name:    "trailing garbage",
			js:      `{"a":1}{"b":2}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			js:      ``,
			wantErr: true,
		},
		{
			name: "empty containers",
			js:   `{"a":{},"b":[]}`,
			want: `{"a":{},"b":[]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pj, err := Parse([]byte(tt.js), nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			it := pj.Iter()
			got, err := it.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("Parse() round-trip = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestParseReuse exercises the WithReuse option: a second parse using
// the first call's *ParsedJson must produce the same result as a fresh
// parse, proving the recycled tape/string buffers don't leak old data.
func TestParseReuse(t *testing.T) {
	first, err := Parse([]byte(`{"a":1,"b":"first"}`), nil, WithReuse(true))
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse([]byte(`{"c":[1,2,3]}`), first, WithReuse(true))
	if err != nil {
		t.Fatal(err)
	}
	it := second.Iter()
	got, err := it.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"c":[1,2,3]}`; string(got) != want {
		t.Errorf("second parse = %s, want %s", got, want)
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 10) + strings.Repeat("]", 10)
	if _, err := Parse([]byte(deep), nil, WithMaxDepth(5)); err == nil {
		t.Error("expected depth error with WithMaxDepth(5) on 10 levels of nesting")
	}
	if _, err := Parse([]byte(deep), nil, WithMaxDepth(20)); err != nil {
		t.Errorf("unexpected error with WithMaxDepth(20): %v", err)
	}
}

func TestParseFloatFallback(t *testing.T) {
	overflowing := `[99999999999999999999999]`
	if _, err := Parse([]byte(overflowing), nil, WithFloatFallback(false)); err == nil {
		t.Error("expected overflow error with WithFloatFallback(false)")
	}
	pj, err := Parse([]byte(overflowing), nil, WithFloatFallback(true))
	if err != nil {
		t.Fatalf("unexpected error with WithFloatFallback(true): %v", err)
	}
	i := pj.Iter()
	i.AdvanceInto()
	_, root, err := i.Root(nil)
	if err != nil {
		t.Fatal(err)
	}
	arr, err := root.Array(nil)
	if err != nil {
		t.Fatal(err)
	}
	elem := arr.Iter()
	if elem.Advance() != TypeFloat {
		t.Fatalf("want element type float, got %v", elem.Type())
	}
	_, flags, err := elem.FloatFlags()
	if err != nil {
		t.Fatal(err)
	}
	if !flags.Contains(FloatOverflowedInteger) {
		t.Error("expected FloatOverflowedInteger to be set")
	}
}

func TestParseND(t *testing.T) {
	tests := []struct {
		name    string
		js      string
		wantErr bool
	}{
		{
			name: "three lines",
			js: `{"three":true,"two":"foo","one":-1}
{"three":false,"two":"bar","one":null}
{"three":true,"two":"baz","one":2.5}`,
		},
		{
			name:    "unterminated line",
			js:      `{"bimbam:"something"`,
			wantErr: true,
		},
		{
			name: "empty object line",
			js:   `{}`,
		},
		{
			name:    "empty input",
			js:      ``,
			wantErr: true,
		},
		{
			name:    "bad number",
			js:      `{"bimbam":1234546544j7}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseND([]byte(tt.js), nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseND() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			i := got.Iter()
			ref := strings.Split(tt.js, "\n")
			for i.Advance() == TypeRoot {
				_, obj, err := i.Root(nil)
				if err != nil {
					t.Fatal(err)
				}
				want := ref[0]
				ref = ref[1:]

				// MarshalJSON consumes the iterator it is called on, so
				// Interface() below reads from an independent copy.
				ifaceIter := *obj
				serialized, err := obj.MarshalJSON()
				if err != nil {
					t.Fatal(err)
				}
				if string(serialized) != want {
					t.Errorf("line round-trip = %s, want %s", serialized, want)
				}

				var wantMap map[string]interface{}
				if err := json.Unmarshal([]byte(want), &wantMap); err != nil {
					t.Fatal(err)
				}
				gotVal, err := ifaceIter.Interface()
				if err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(gotVal, map[string]interface{}(wantMap)) {
					// Interface() uses int64/uint64/float64 directly, while
					// json.Unmarshal always produces float64 -- round both
					// through json.Marshal so the comparison is type-agnostic.
					gotJSON, err := json.Marshal(gotVal)
					if err != nil {
						t.Fatal(err)
					}
					wantJSON, err := json.Marshal(wantMap)
					if err != nil {
						t.Fatal(err)
					}
					if string(gotJSON) != string(wantJSON) {
						t.Errorf("Interface() = %s, want %s", gotJSON, wantJSON)
					}
				}
			}
		})
	}
}

func TestCPUTier(t *testing.T) {
	if !SupportedCPU() {
		t.Fatal("SupportedCPU must always report true: every tier has a real fallback implementation")
	}
	if CPUTier() == "" {
		t.Error("CPUTier() returned an empty string")
	}
}
