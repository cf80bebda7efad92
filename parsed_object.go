/*
 * MinIO Cloud Storage, (C) 2020 MinIO, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package simdjson

import (
	"errors"
	"fmt"
)

// Object is a cursor over one JSON object's worth of tape entries: a
// key/value run terminated by TagObjectEnd, starting at off.
type Object struct {
	tape ParsedJson
	off  int
}

// ErrPathNotFound is returned by FindPath when a step along the path
// does not name a key present in the corresponding object.
var ErrPathNotFound = errors.New("path not found")

// walker returns an independent cursor over the same tape, starting at
// the object's current position -- used by every read-only traversal
// below so none of them mutate o.off.
func (o *Object) walker() Object {
	return Object{tape: o.tape, off: o.off}
}

// NextElementBytes decodes the key and value at the cursor's current
// position into dst, advances past it, and returns the key's type.
// TypeNone with a nil error marks the end of the object. Unlike
// NextElement, the key is returned without a string allocation.
func (o *Object) NextElementBytes(dst *Iter) (key []byte, t Type, err error) {
	tape := o.tape.Tape
	if o.off >= len(tape) {
		return nil, TypeNone, nil
	}

	head := tape[o.off]
	switch Tag(head >> JSONTAGOFFSET) {
	case TagString:
		if o.off+2 >= len(tape) {
			return nil, TypeNone, fmt.Errorf("parsing object element name: unexpected end of tape")
		}
		length := tape[o.off+1]
		key, err = o.tape.stringByteAt(head&JSONVALUEMASK, length)
		if err != nil {
			return nil, TypeNone, fmt.Errorf("parsing object element name: %w", err)
		}
		o.off += 2
	case TagObjectEnd:
		return nil, TypeNone, nil
	case TagNop:
		o.off += int(head & JSONVALUEMASK)
		return o.NextElementBytes(dst)
	default:
		return nil, TypeNone, fmt.Errorf("object: unexpected tag %c", byte(head>>JSONTAGOFFSET))
	}

	valueWord := tape[o.off]
	o.off++

	dst.cur = valueWord & JSONVALUEMASK
	dst.t = Tag(valueWord >> JSONTAGOFFSET)
	dst.off = o.off
	dst.tape = o.tape
	dst.calcNext(false)
	size := dst.addNext
	dst.calcNext(true)
	if dst.off+size > len(dst.tape.Tape) {
		return nil, TypeNone, errors.New("element extends beyond tape")
	}
	dst.tape.Tape = dst.tape.Tape[:dst.off+size]

	o.off += size
	return key, TagToType[dst.t], nil
}

// NextElement is NextElementBytes with the key copied into a string.
func (o *Object) NextElement(dst *Iter) (key string, t Type, err error) {
	b, t, err := o.NextElementBytes(dst)
	return string(b), t, err
}

// Map decodes every element into dst, defaulting to a fresh map when
// dst is nil. See Iter.Interface for the value types produced.
func (o *Object) Map(dst map[string]interface{}) (map[string]interface{}, error) {
	if dst == nil {
		dst = make(map[string]interface{})
	}
	var elem Iter
	for {
		key, t, err := o.NextElement(&elem)
		if err != nil {
			return nil, err
		}
		if t == TypeNone {
			return dst, nil
		}
		v, err := elem.Interface()
		if err != nil {
			return nil, fmt.Errorf("parsing element %q: %w", key, err)
		}
		dst[key] = v
	}
}

// Parse consumes the object, returning every element in original
// order plus a key->index lookup.
func (o *Object) Parse(dst *Elements) (*Elements, error) {
	if dst == nil {
		dst = &Elements{Elements: make([]Element, 0, 5), Index: make(map[string]int, 5)}
	} else {
		dst.Elements = dst.Elements[:0]
		for k := range dst.Index {
			delete(dst.Index, k)
		}
	}
	var elem Iter
	for {
		key, t, err := o.NextElement(&elem)
		if err != nil {
			return dst, err
		}
		if t == TypeNone {
			return dst, nil
		}
		dst.Index[key] = len(dst.Elements)
		dst.Elements = append(dst.Elements, Element{Name: key, Type: t, Iter: elem})
	}
}

// FindKey returns the single named element, or nil if it is absent.
// The object's own cursor is left untouched.
func (o *Object) FindKey(key string, dst *Element) *Element {
	w := o.walker()
	var elem Iter
	for {
		name, t, err := w.NextElementBytes(&elem)
		if err != nil || t == TypeNone {
			return nil
		}
		if string(name) != key {
			continue
		}
		if dst == nil {
			dst = &Element{}
		}
		dst.Name, dst.Type, dst.Iter = key, t, elem
		return dst
	}
}

// ForEach invokes fn once per element, in tape order. When onlyKeys is
// non-empty, elements whose key is absent from it are skipped and fn
// stops being called as soon as every key in onlyKeys has matched.
func (o *Object) ForEach(fn func(key []byte, i Iter), onlyKeys map[string]struct{}) error {
	w := o.walker()
	var elem Iter
	matched := 0
	for {
		name, t, err := w.NextElementBytes(&elem)
		if err != nil {
			return fmt.Errorf("object: %w", err)
		}
		if t == TypeNone {
			return nil
		}
		if len(onlyKeys) > 0 {
			if _, ok := onlyKeys[string(name)]; !ok {
				continue
			}
		}
		fn(name, elem)
		matched++
		if len(onlyKeys) > 0 && matched == len(onlyKeys) {
			return nil
		}
	}
}

// DeleteElems calls fn for each element and blanks any for which it
// returns true (or, with fn nil, every element named in onlyKeys, or
// every element if both are nil) by overwriting its tape span with
// TagNop entries that NextElementBytes skips transparently.
func (o *Object) DeleteElems(fn func(key []byte, i Iter) bool, onlyKeys map[string]struct{}) error {
	w := o.tape.Iter()
	w.off = o.off
	matched := 0
	for {
		t := w.Advance()
		if t != TypeString || w.off+1 >= len(w.tape.Tape) {
			if t == TypeNone {
				return nil
			}
			return fmt.Errorf("object: unexpected name tag %v", w.t)
		}
		keyStart := w.off - 1
		name, err := w.tape.stringByteAt(w.cur, w.tape.Tape[w.off])
		if err != nil {
			return fmt.Errorf("getting object name: %w", err)
		}

		if len(onlyKeys) > 0 {
			if _, ok := onlyKeys[string(name)]; !ok {
				if w.Advance() == TypeNone {
					return nil
				}
				continue
			}
		}

		if w.Advance() == TypeNone {
			return nil
		}
		if fn == nil || fn(name, w) {
			blankRange(w.tape.Tape, keyStart, w.off+w.addNext)
		}
		matched++
		if matched == len(onlyKeys) {
			return nil
		}
	}
}

// blankRange overwrites tape[start:end] with descending TagNop skip
// counts so a later scan can jump straight over the deleted span.
func blankRange(tape []uint64, start, end int) {
	skip := uint64(end - start)
	for i := start; i < end; i++ {
		tape[i] = uint64(TagNop)<<JSONTAGOFFSET | skip
		skip--
	}
}

// FindPath walks a slash-free sequence of object keys ("Image", "Url",
// ...), descending into nested objects, and returns the element named
// by the final step. ErrPathNotFound is returned if any step is
// missing or is not itself an object when more steps remain.
func (o *Object) FindPath(dst *Element, path ...string) (*Element, error) {
	if len(path) == 0 {
		return dst, ErrPathNotFound
	}
	cur := o.walker()
	var elem Iter
	key, rest := path[0], path[1:]
	for {
		name, t, err := cur.NextElementBytes(&elem)
		if err != nil {
			return dst, err
		}
		if t == TypeNone {
			return dst, ErrPathNotFound
		}
		if string(name) != key {
			continue
		}
		if len(rest) == 0 {
			if dst == nil {
				dst = &Element{}
			}
			dst.Name, dst.Type, dst.Iter = key, t, elem
			return dst, nil
		}
		if t != TypeObject {
			return dst, fmt.Errorf("value of key %v is not an object", key)
		}
		obj, err := elem.Object(nil)
		if err != nil {
			return dst, err
		}
		cur = *obj
		key, rest = rest[0], rest[1:]
	}
}

// Element is one key/value pair produced by Object.Parse.
type Element struct {
	Name string
	Type Type
	Iter Iter
}

// Elements holds every element of an object in tape order, with an
// Index for key lookup.
type Elements struct {
	Elements []Element
	Index    map[string]int
}

// Lookup returns the element named key, or nil if it is absent.
func (e Elements) Lookup(key string) *Element {
	idx, ok := e.Index[key]
	if !ok {
		return nil
	}
	return &e.Elements[idx]
}

// MarshalJSON renders every element back out as a JSON object.
func (e Elements) MarshalJSON() ([]byte, error) {
	return e.MarshalJSONBuffer(nil)
}

// MarshalJSONBuffer is MarshalJSON appending to an existing buffer.
func (e Elements) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	dst = append(dst, '{')
	for i, elem := range e.Elements {
		dst = append(dst, '"')
		dst = escapeBytes(dst, []byte(elem.Name))
		dst = append(dst, '"', ':')
		var err error
		dst, err = elem.Iter.MarshalJSONBuffer(dst)
		if err != nil {
			return nil, err
		}
		if i < len(e.Elements)-1 {
			dst = append(dst, ',')
		}
	}
	return append(dst, '}'), nil
}
