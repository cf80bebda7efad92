package simdjson

import (
	"reflect"
	"testing"
)

const objectTestJSON = `{
	"Image": {
		"Animated": false,
		"Height": 600,
		"IDs": [116, 943, 234, 38793],
		"Thumbnail": {
			"Height": 125,
			"Url": "http://www.example.com/image/481989943",
			"Width": 100
		},
		"Title": "View from 15th Floor",
		"Width": 800
	},
	"Alt": "Image of city"
}`

// rootObject parses js and returns its top-level object.
func rootObject(t *testing.T, js string) *Object {
	t.Helper()
	pj, err := Parse([]byte(js), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	i := pj.Iter()
	i.AdvanceInto()
	_, root, err := i.Root(nil)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	obj, err := root.Object(nil)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	return obj
}

func TestObjectFindPath(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		want    string
		wantErr bool
	}{
		{name: "top level key", path: []string{"Alt"}, want: `"Image of city"`},
		{name: "nested bool", path: []string{"Image", "Animated"}, want: "false"},
		{name: "nested string", path: []string{"Image", "Thumbnail", "Url"}, want: `"http://www.example.com/image/481989943"`},
		{name: "nested int", path: []string{"Image", "Height"}, want: "600"},
		{name: "nested object", path: []string{"Image", "Thumbnail"}, want: `{"Height":125,"Url":"http://www.example.com/image/481989943","Width":100}`},
		{name: "nested array", path: []string{"Image", "IDs"}, want: `[116,943,234,38793]`},
		{name: "missing key", path: []string{"Image", "NonExistent"}, wantErr: true},
		{name: "missing top key", path: []string{"NonExistent"}, wantErr: true},
		{name: "not an object", path: []string{"Alt", "Nested"}, wantErr: true},
		{name: "empty path", path: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := rootObject(t, objectTestJSON)
			elem, err := obj.FindPath(nil, tt.path...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got, err := elem.Iter.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestObjectFindKey(t *testing.T) {
	obj := rootObject(t, objectTestJSON)
	elem := obj.FindKey("Alt", nil)
	if elem == nil {
		t.Fatal("FindKey(\"Alt\") = nil")
	}
	if elem.Type != TypeString {
		t.Errorf("Type = %v, want TypeString", elem.Type)
	}
	if s, err := elem.Iter.String(); err != nil || s != "Image of city" {
		t.Errorf("String() = %q, %v", s, err)
	}

	if obj.FindKey("DoesNotExist", nil) != nil {
		t.Error("FindKey on absent key should return nil")
	}
}

func TestObjectForEach(t *testing.T) {
	const input = `{"key1":"value1","key2":"value2","key3":"value3","key4":"value4"}`

	tests := []struct {
		name     string
		onlyKeys []string
		want     map[string]string
	}{
		{
			name: "all keys",
			want: map[string]string{"key1": "value1", "key2": "value2", "key3": "value3", "key4": "value4"},
		},
		{
			name:     "subset",
			onlyKeys: []string{"key1", "key3"},
			want:     map[string]string{"key1": "value1", "key3": "value3"},
		},
		{
			name:     "unmatched key is simply absent",
			onlyKeys: []string{"key2", "nope"},
			want:     map[string]string{"key2": "value2"},
		},
		{
			name:     "no matches",
			onlyKeys: []string{"nope"},
			want:     map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := rootObject(t, input)
			var onlyKeys map[string]struct{}
			if len(tt.onlyKeys) > 0 {
				onlyKeys = make(map[string]struct{}, len(tt.onlyKeys))
				for _, k := range tt.onlyKeys {
					onlyKeys[k] = struct{}{}
				}
			}
			got := make(map[string]string)
			err := obj.ForEach(func(key []byte, i Iter) {
				v, _ := i.StringCvt()
				got[string(key)] = v
			}, onlyKeys)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(tt.want, got) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectParseAndMap(t *testing.T) {
	const input = `{"a":1,"b":"two","c":true}`
	obj := rootObject(t, input)

	elems, err := obj.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(elems.Elements))
	}
	if elems.Elements[0].Name != "a" || elems.Elements[1].Name != "b" || elems.Elements[2].Name != "c" {
		t.Errorf("elements out of tape order: %+v", elems.Elements)
	}
	if elems.Lookup("b") == nil {
		t.Error("Lookup(\"b\") = nil")
	}
	if elems.Lookup("missing") != nil {
		t.Error("Lookup(\"missing\") should be nil")
	}

	out, err := elems.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != input {
		t.Errorf("MarshalJSON() = %s, want %s", out, input)
	}

	obj = rootObject(t, input)
	m, err := obj.Map(nil)
	if err != nil {
		t.Fatal(err)
	}
	// Positive integers tag as TagUint (scanNumber only produces
	// TagInteger for a leading '-'), so Interface() yields uint64 here.
	want := map[string]interface{}{"a": uint64(1), "b": "two", "c": true}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Map() = %#v, want %#v", m, want)
	}
}

func TestObjectDeleteElems(t *testing.T) {
	const input = `{"a":1,"b":2,"c":3,"d":4}`
	pj, err := Parse([]byte(input), nil)
	if err != nil {
		t.Fatal(err)
	}
	i := pj.Iter()
	i.AdvanceInto()
	_, root, err := i.Root(nil)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := root.Object(nil)
	if err != nil {
		t.Fatal(err)
	}

	// Delete every element whose value is even.
	err = obj.DeleteElems(func(key []byte, i Iter) bool {
		v, err := i.Int()
		return err == nil && v%2 == 0
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := root.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"a":1,"c":3}`; string(out) != want {
		t.Errorf("MarshalJSON() after DeleteElems = %s, want %s", out, want)
	}
}

func TestObjectDeleteElemsOnlyKeys(t *testing.T) {
	const input = `{"a":1,"b":2,"c":3}`
	pj, err := Parse([]byte(input), nil)
	if err != nil {
		t.Fatal(err)
	}
	i := pj.Iter()
	i.AdvanceInto()
	_, root, err := i.Root(nil)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := root.Object(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = obj.DeleteElems(nil, map[string]struct{}{"b": {}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := root.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"a":1,"c":3}`; string(out) != want {
		t.Errorf("MarshalJSON() after DeleteElems = %s, want %s", out, want)
	}
}

func TestArrayConversions(t *testing.T) {
	obj := rootObject(t, objectTestJSON)
	elem, err := obj.FindPath(nil, "Image", "IDs")
	if err != nil {
		t.Fatal(err)
	}
	arr, err := elem.Iter.Array(nil)
	if err != nil {
		t.Fatal(err)
	}

	ints, err := arr.AsInteger()
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{116, 943, 234, 38793}; !reflect.DeepEqual(ints, want) {
		t.Errorf("AsInteger() = %v, want %v", ints, want)
	}

	var sum int64
	arr, err = elem.Iter.Array(nil)
	if err != nil {
		t.Fatal(err)
	}
	arr.ForEach(func(i Iter) {
		v, err := i.Int()
		if err == nil {
			sum += v
		}
	})
	if want := int64(116 + 943 + 234 + 38793); sum != want {
		t.Errorf("ForEach sum = %d, want %d", sum, want)
	}
}
