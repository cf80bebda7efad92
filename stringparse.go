package simdjson

import (
	"github.com/parsekit/simdjson/internal/perrors"
)

// parseStringValue decodes the string at buf[idx] (idx points at the
// opening quote) and writes it to the tape as a TagString entry. If
// the caller opted out of copying (WithCopyStrings(false)) and the
// string needs no unescaping, it is referenced directly in place
// rather than copied into pj.Strings -- the tradeoff spec.md §4.4 and
// this package's alwaysCopyStrings comment both describe. It returns
// the number of bytes of buf consumed, including both quotes.
func (pj *internalParsedJson) parseStringValue(buf []byte, idx int) (int, error) {
	src := buf[idx+1:]
	if !pj.copyStrings {
		if end, ok := findPlainStringEnd(src); ok {
			pj.appendScalarTag(uint64(idx+1), byte(TagString))
			pj.Tape = append(pj.Tape, uint64(end))
			return end + 2, nil
		}
	}
	before := len(pj.Strings)
	strs, consumed, err := parseString(src, pj.Strings)
	if err != nil {
		return 0, err
	}
	pj.Strings = strs
	length := uint64(len(pj.Strings) - before)
	offset := uint64(before) | STRINGBUFBIT
	pj.appendScalarTag(offset, byte(TagString))
	pj.Tape = append(pj.Tape, length)
	return 1 + consumed, nil
}

// findPlainStringEnd scans for the closing quote of a string that
// contains no backslash escapes. If a backslash is found first (the
// string needs decoding) or no terminator exists, it returns false.
func findPlainStringEnd(src []byte) (int, bool) {
	for i, b := range src {
		switch b {
		case '"':
			return i, true
		case '\\':
			return 0, false
		}
	}
	return 0, false
}

// hexDigitLUT maps an ASCII byte to its hex value, or 0xff if the byte
// is not a hex digit. Looked up four times per \uXXXX escape the way
// the teacher's asm decoder consults a nibble table per byte.
var hexDigitLUT = buildHexDigitLUT()

func buildHexDigitLUT() [256]byte {
	var lut [256]byte
	for i := range lut {
		lut[i] = 0xff
	}
	for c := byte('0'); c <= '9'; c++ {
		lut[c] = c - '0'
	}
	for c := byte('a'); c <= 'f'; c++ {
		lut[c] = c - 'a' + 10
	}
	for c := byte('A'); c <= 'F'; c++ {
		lut[c] = c - 'A' + 10
	}
	return lut
}

// parseString decodes the JSON string body beginning at src (src must
// NOT include the opening quote) into dst, per spec.md §4.4. Decoding
// stops at the first unescaped '"'. It returns the buffer with the
// decoded bytes appended, the number of bytes of src consumed
// (including the terminating quote), and any error.
//
// On error the returned slice is dst unchanged -- a partially decoded
// string is never left attached to the buffer.
func parseString(src, dst []byte) ([]byte, int, error) {
	start := len(dst)
	n := len(src)
	i := 0
	for {
		if i >= n {
			return dst[:start], i, perrors.New(perrors.UnterminatedString, int64(i), "stringparse")
		}
		b := src[i]
		switch {
		case b == '"':
			return dst, i + 1, nil
		case b == '\\':
			i++
			if i >= n {
				return dst[:start], i, perrors.New(perrors.InvalidEscape, int64(i), "stringparse:eof")
			}
			var err error
			dst, i, err = decodeEscape(src, dst, i)
			if err != nil {
				return dst[:start], i, err
			}
		case b < 0x20:
			return dst[:start], i, perrors.NewChar(perrors.UnescapedControl, int64(i), b, "stringparse")
		default:
			dst = append(dst, b)
			i++
		}
	}
}

// decodeEscape decodes the escape sequence following the backslash at
// src[i-1] (i.e. src[i] is the escape selector byte) and appends its
// decoding to dst. It returns the advanced index into src.
func decodeEscape(src, dst []byte, i int) ([]byte, int, error) {
	n := len(src)
	switch src[i] {
	case '"':
		return append(dst, '"'), i + 1, nil
	case '\\':
		return append(dst, '\\'), i + 1, nil
	case '/':
		return append(dst, '/'), i + 1, nil
	case 'b':
		return append(dst, '\b'), i + 1, nil
	case 'f':
		return append(dst, '\f'), i + 1, nil
	case 'n':
		return append(dst, '\n'), i + 1, nil
	case 'r':
		return append(dst, '\r'), i + 1, nil
	case 't':
		return append(dst, '\t'), i + 1, nil
	case 'u':
		i++
		cp, next, err := decodeHex4(src, i)
		if err != nil {
			return dst, next, err
		}
		i = next
		if cp >= 0xd800 && cp <= 0xdbff {
			if i+1 >= n || src[i] != '\\' || src[i+1] != 'u' {
				return dst, i, perrors.New(perrors.InvalidUnicodeCodepoint, int64(i), "stringparse:lone-high-surrogate")
			}
			low, next2, err := decodeHex4(src, i+2)
			if err != nil {
				return dst, next2, err
			}
			if low < 0xdc00 || low > 0xdfff {
				return dst, next2, perrors.New(perrors.InvalidUnicodeCodepoint, int64(i), "stringparse:bad-low-surrogate")
			}
			r := 0x10000 + (cp-0xd800)<<10 + (low - 0xdc00)
			return appendRune(dst, rune(r)), next2, nil
		}
		if cp >= 0xdc00 && cp <= 0xdfff {
			return dst, i, perrors.New(perrors.InvalidUnicodeCodepoint, int64(i), "stringparse:lone-low-surrogate")
		}
		return appendRune(dst, rune(cp)), i, nil
	default:
		return dst, i, perrors.NewChar(perrors.InvalidEscape, int64(i), src[i], "stringparse")
	}
}

// decodeHex4 reads exactly four hex digits from src[i:] and returns
// the 16-bit value they encode.
func decodeHex4(src []byte, i int) (uint32, int, error) {
	if i+4 > len(src) {
		return 0, len(src), perrors.New(perrors.InvalidUnicodeEscape, int64(i), "stringparse:short")
	}
	var v uint32
	for _, b := range src[i : i+4] {
		h := hexDigitLUT[b]
		if h == 0xff {
			return 0, i, perrors.NewChar(perrors.InvalidUnicodeEscape, int64(i), b, "stringparse:hex")
		}
		v = v<<4 | uint32(h)
	}
	return v, i + 4, nil
}

// appendRune appends the UTF-8 encoding of r to dst. r is always a
// valid scalar value by construction: the surrogate cases in
// decodeEscape are rejected before this is reached.
func appendRune(dst []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, byte(0xc0|r>>6), byte(0x80|r&0x3f))
	case r < 0x10000:
		return append(dst, byte(0xe0|r>>12), byte(0x80|(r>>6)&0x3f), byte(0x80|r&0x3f))
	default:
		return append(dst, byte(0xf0|r>>18), byte(0x80|(r>>12)&0x3f), byte(0x80|(r>>6)&0x3f), byte(0x80|r&0x3f))
	}
}
