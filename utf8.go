package simdjson

import "github.com/parsekit/simdjson/internal/simdkernel"

// utf8Validator is the block-incremental UTF-8 validator of spec.md
// §3.4/§4.2 (C2). It is carried across the whole input: state survives
// block boundaries the way the teacher's avx_processed_utf_bytes does
// for its AVX2 checker.
//
// continuationLengthLUT maps a byte's high nibble to the total length
// of the UTF-8 sequence it would start (1 for ASCII, 0 for a stray
// continuation byte, 2/3/4 for multi-byte leads) — spec.md §4.2 step 2.
// It is looked up through the Kernel so the classification itself goes
// through the same ISA-agnostic nibble-shuffle primitive a hardware
// backend would use; the surrounding bounds bookkeeping (the carried
// continuation count, and the lower/upper bound a continuation byte
// must fall within to reject overlong encodings, bad surrogates and
// codepoints past U+10FFFF) is the same state spec.md §3.4 calls
// `carried_continuations` kept as an explicit per-byte walk rather than
// a second vector pass, since a single pass is enough once the length
// is known.
var continuationLengthLUT = [16]byte{
	1, 1, 1, 1, 1, 1, 1, 1, // 0x0-0x7: ASCII
	0, 0, 0, 0, // 0x8-0xB: continuation byte, not a valid lead
	2, 2, // 0xC-0xD: 110xxxxx lead
	3, // 0xE: 1110xxxx lead
	4, // 0xF: 11110xxx lead (0xF5-0xFF rejected separately)
}

type utf8Validator struct {
	kernel simdkernel.Kernel

	// needContinuation is the number of continuation bytes still owed
	// before the current multi-byte sequence is complete. This is
	// `carried_continuations` from spec.md §3.4, carried byte-granular
	// instead of lane-granular since the validator walks one committed
	// byte at a time once a lead byte's length is known.
	needContinuation int
	// lower/upperBound constrain the *next* continuation byte. They
	// start at the lead-byte-specific range (blocking overlong/
	// surrogate/over-max encodings per spec.md §4.2 steps 5-6) and
	// relax to [0x80,0xBF] for subsequent continuation bytes.
	lowerBound, upperBound byte

	hasError bool
}

func newUTF8Validator(k simdkernel.Kernel) *utf8Validator {
	return &utf8Validator{kernel: k}
}

// ValidateBlock feeds one simdkernel.BlockSize-byte block (zero-padded
// past the real input) through the validator.
func (v *utf8Validator) ValidateBlock(block *[simdkernel.BlockSize]byte, n int) {
	if v.hasError {
		return
	}
	// ASCII fast path: if every byte in the block is < 0x80 and we are
	// not mid-sequence, there is nothing to check at all.
	if v.needContinuation == 0 && v.kernel.Gt(block, 0x7f) == 0 {
		return
	}
	lengths := v.kernel.ShuffleHighNibble(block, continuationLengthLUT)
	for i := 0; i < n; i++ {
		b := block[i]
		if v.needContinuation > 0 {
			if b < v.lowerBound || b > v.upperBound {
				v.hasError = true
				return
			}
			v.needContinuation--
			v.lowerBound, v.upperBound = 0x80, 0xBF
			continue
		}
		if b < 0x80 {
			continue
		}
		if b > 0xF4 {
			v.hasError = true
			return
		}
		switch lengths[i] {
		case 2:
			if b < 0xC2 {
				v.hasError = true // overlong 2-byte (0xC0, 0xC1)
				return
			}
			v.needContinuation = 1
			v.lowerBound, v.upperBound = 0x80, 0xBF
		case 3:
			v.needContinuation = 2
			switch b {
			case 0xE0:
				v.lowerBound, v.upperBound = 0xA0, 0xBF // block overlong
			case 0xED:
				v.lowerBound, v.upperBound = 0x80, 0x9F // block surrogates
			default:
				v.lowerBound, v.upperBound = 0x80, 0xBF
			}
		case 4:
			v.needContinuation = 3
			switch b {
			case 0xF0:
				v.lowerBound, v.upperBound = 0x90, 0xBF // block overlong
			case 0xF4:
				v.lowerBound, v.upperBound = 0x80, 0x8F // block over U+10FFFF
			default:
				v.lowerBound, v.upperBound = 0x80, 0xBF
			}
		default:
			// 0 (stray continuation byte) or an impossible LUT value.
			v.hasError = true
			return
		}
	}
}

// Finish must be called once all input has been fed through
// ValidateBlock. It reports whether the accumulated input is valid
// UTF-8 — false if a mid-sequence error was found or the final byte
// left a multi-byte sequence incomplete at end-of-input.
func (v *utf8Validator) Finish() bool {
	return !v.hasError && v.needContinuation == 0
}
