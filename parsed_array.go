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
	"math"
)

// Array is a cursor over one JSON array's worth of tape entries,
// terminated by TagArrayEnd, starting at off.
type Array struct {
	tape ParsedJson
	off  int
}

// Iter returns an independent iterator over the array's elements,
// ready after a call to Advance. Calling past the last element
// returns TypeNone.
func (a *Array) Iter() Iter {
	return Iter{tape: a.tape, off: a.off}
}

// FirstType returns the type of the first element, or TypeNone if the
// array is empty.
func (a *Array) FirstType() Type {
	i := a.Iter()
	return i.PeekNext()
}

// MarshalJSON renders the array back out as JSON.
func (a *Array) MarshalJSON() ([]byte, error) {
	return a.MarshalJSONBuffer(nil)
}

// MarshalJSONBuffer is MarshalJSON appending to an existing buffer.
func (a *Array) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	dst = append(dst, '[')
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		if t == TypeNone {
			break
		}
		dst, err = elem.MarshalJSONBuffer(dst)
		if err != nil {
			return nil, err
		}
		if i.PeekNextTag() == TagArrayEnd {
			break
		}
		dst = append(dst, ',')
	}
	if i.PeekNextTag() != TagArrayEnd {
		return nil, errors.New("expected TagArrayEnd as final tag in array")
	}
	return append(dst, ']'), nil
}

// elemCapHint estimates a slice capacity from the remaining tape: each
// element consumes wordsPerElem tape words (2 for a tagged scalar,
// 1 when only counting entries rather than raw words).
func (a *Array) elemCapHint(wordsPerElem int) int {
	n := (len(a.tape.Tape) - a.off - 1) / wordsPerElem
	if n < 0 {
		return 0
	}
	return n
}

// Interface returns the array as a slice of interface{} values. See
// Iter.Interface for the value types produced.
func (a *Array) Interface() ([]interface{}, error) {
	dst := make([]interface{}, 0, a.elemCapHint(2))
	i := a.Iter()
	for i.Advance() != TypeNone {
		elem, err := i.Interface()
		if err != nil {
			return nil, err
		}
		dst = append(dst, elem)
	}
	return dst, nil
}

// ForEach invokes fn once per element, in tape order.
func (a *Array) ForEach(fn func(i Iter)) {
	i := a.Iter()
	for i.Advance() != TypeNone {
		fn(i)
	}
}

// scanNumbers walks the array's raw tape words directly (rather than
// through Iter) until TagArrayEnd, dispatching each element's value
// bits to the matching callback. AsFloat/AsInteger/AsUint64 each
// supply their own conversion and range checks through the callbacks;
// this consumes the array's own cursor (a.off), as a one-shot scan.
func (a *Array) scanNumbers(onFloat, onInteger, onUint func(bits uint64) error) error {
	tape := a.tape.Tape
	for {
		if a.off >= len(tape) {
			return errors.New("corrupt input: unexpected end of tape in array")
		}
		tag := Tag(tape[a.off] >> 56)
		a.off++
		var cb func(bits uint64) error
		var label string
		switch tag {
		case TagArrayEnd:
			return nil
		case TagFloat:
			cb, label = onFloat, "float"
		case TagInteger, TagUint:
			cb, label = onInteger, "integer"
			if tag == TagUint {
				cb = onUint
			}
		default:
			return fmt.Errorf("unable to convert type %v to number", tag)
		}
		if a.off >= len(tape) {
			return fmt.Errorf("corrupt input: expected %s, but no more values", label)
		}
		if err := cb(tape[a.off]); err != nil {
			return err
		}
		a.off++
	}
}

// AsFloat returns the array values as float64. Integers are converted
// automatically.
func (a *Array) AsFloat() ([]float64, error) {
	dst := make([]float64, 0, a.elemCapHint(2))
	err := a.scanNumbers(
		func(bits uint64) error {
			dst = append(dst, math.Float64frombits(bits))
			return nil
		},
		func(bits uint64) error {
			dst = append(dst, float64(int64(bits)))
			return nil
		},
		func(bits uint64) error {
			dst = append(dst, float64(bits))
			return nil
		},
	)
	return dst, err
}

// AsInteger returns the array values as int64. Uints/floats are
// converted automatically if they fit within range.
func (a *Array) AsInteger() ([]int64, error) {
	dst := make([]int64, 0, a.elemCapHint(2))
	err := a.scanNumbers(
		func(bits uint64) error {
			val := math.Float64frombits(bits)
			if val > math.MaxInt64 {
				return errors.New("float value overflows int64")
			}
			if val < math.MinInt64 {
				return errors.New("float value underflows int64")
			}
			dst = append(dst, int64(val))
			return nil
		},
		func(bits uint64) error {
			dst = append(dst, int64(bits))
			return nil
		},
		func(bits uint64) error {
			if bits > math.MaxInt64 {
				return errors.New("unsigned integer value overflows int64")
			}
			dst = append(dst, int64(bits))
			return nil
		},
	)
	return dst, err
}

// AsUint64 returns the array values as uint64. Ints/floats are
// converted automatically if they fit within range.
func (a *Array) AsUint64() ([]uint64, error) {
	dst := make([]uint64, 0, a.elemCapHint(2))
	err := a.scanNumbers(
		func(bits uint64) error {
			val := math.Float64frombits(bits)
			if val > math.MaxInt64 {
				return errors.New("float value overflows uint64")
			}
			if val < 0 {
				return errors.New("float value is negative")
			}
			dst = append(dst, uint64(val))
			return nil
		},
		func(bits uint64) error {
			val := int64(bits)
			if val < 0 {
				return errors.New("int64 value is negative")
			}
			dst = append(dst, uint64(val))
			return nil
		},
		func(bits uint64) error {
			dst = append(dst, bits)
			return nil
		},
	)
	return dst, err
}

// AsString returns the array values as strings. No conversion is
// performed; a non-string element is an error.
func (a *Array) AsString() ([]string, error) {
	dst := make([]string, 0, a.elemCapHint(1))
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		switch t {
		case TypeNone:
			return dst, nil
		case TypeString:
			s, err := elem.String()
			if err != nil {
				return nil, err
			}
			dst = append(dst, s)
		default:
			return nil, fmt.Errorf("element in array is not string, but %v", t)
		}
	}
}

// AsStringCvt returns the array values as strings, converting scalar
// types. Root, object and array elements are not supported.
func (a *Array) AsStringCvt() ([]string, error) {
	dst := make([]string, 0, a.elemCapHint(1))
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		if t == TypeNone {
			return dst, nil
		}
		s, err := elem.StringCvt()
		if err != nil {
			return nil, err
		}
		dst = append(dst, s)
	}
}
