package simdjson

import (
	"math/bits"

	"github.com/parsekit/simdjson/internal/perrors"
	"github.com/parsekit/simdjson/internal/simdkernel"
)

const evenBits = uint64(0x5555555555555555)
const oddBits = ^evenBits

// prefixXor computes, for every bit i of x, the XOR of bits [0,i] of x.
// This is the portable doubling-shift realization of the carryless
// multiply by all-ones that spec.md §4.3.b calls for — six shift/XOR
// steps instead of one CLMUL instruction, same result.
func prefixXor(x uint64) uint64 {
	x ^= x << 1
	x ^= x << 2
	x ^= x << 4
	x ^= x << 8
	x ^= x << 16
	x ^= x << 32
	return x
}

// stage1State carries every piece of inter-block state spec.md §3.5
// names, plus the structural bitmap deferred one block for latency
// hiding (spec.md §9 "staged publication of structurals").
type stage1State struct {
	kernel simdkernel.Kernel

	prevOddBackslash  uint64 // 0 or 1
	prevInsideQuote   uint64 // 0 or all-ones
	prevPseudoPred    uint64 // 0 or 1
	deferredStructurals uint64

	errorMask uint64
	utf8      *utf8Validator
}

func newStage1State(k simdkernel.Kernel) *stage1State {
	return &stage1State{
		kernel:         k,
		prevPseudoPred: 1, // the very first byte follows "whitespace"
		utf8:           newUTF8Validator(k),
	}
}

// buildEqMask ORs together Eq() against every byte in set, the way the
// structural-character and whitespace-character bitmaps are built: a
// direct application of C1's compare-equal primitive, repeated per
// character, rather than the two-LUT-AND nibble trick a hand-tuned
// AVX2 kernel uses for the same result.
func buildEqMask(k simdkernel.Kernel, block *[simdkernel.BlockSize]byte, set []byte) uint64 {
	var mask uint64
	for _, c := range set {
		mask |= k.Eq(block, c)
	}
	return mask
}

var structuralChars = []byte{'{', '}', '[', ']', ':', ','}
var whitespaceChars = []byte{0x09, 0x0a, 0x0d, 0x20}

// isStructuralOrWhitespace reports whether c terminates a bare value
// (number, true, false, null) legally, grounded on the teacher's
// is_not_structural_or_whitespace (its sense inverted: that function
// returns non-zero when c is NEITHER).
func isStructuralOrWhitespace(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',', 0x09, 0x0a, 0x0d, 0x20:
		return true
	default:
		return false
	}
}

// scanBlock runs spec.md §4.3 steps (a)-(e) over one 64-byte block and
// returns the finalized structural bitmap for THIS block (publication
// of it is deferred by the caller, see spec.md §9).
func (s *stage1State) scanBlock(block *[simdkernel.BlockSize]byte) uint64 {
	k := s.kernel

	// (a) backslash-escape analysis: mark the byte right after every
	// odd-length run of backslashes -- the byte that run escapes.
	bsBits := k.Eq(block, '\\')
	startEdges := bsBits & ^(bsBits << 1)
	evenStartMask := evenBits ^ s.prevOddBackslash
	evenStarts := startEdges & evenStartMask
	oddStarts := startEdges &^ evenStartMask

	evenCarries := bsBits + evenStarts

	oddCarries, carry := bits.Add64(bsBits, oddStarts, 0)
	_ = carry
	endsOddBackslash := oddCarries < bsBits // unsigned add overflowed
	oddCarries |= s.prevOddBackslash
	if endsOddBackslash {
		s.prevOddBackslash = 1
	} else {
		s.prevOddBackslash = 0
	}

	evenCarryEnds := evenCarries &^ bsBits
	oddCarryEnds := oddCarries &^ bsBits
	evenStartOddEnd := evenCarryEnds & oddBits
	oddStartEvenEnd := oddCarryEnds & evenBits
	oddEnds := evenStartOddEnd | oddStartEvenEnd

	// (b) quote mask: prefix-xor of quote bits (with escaped quotes
	// removed) gives a half-open "inside string" bitmap.
	quoteBits := k.Eq(block, '"') &^ oddEnds
	quoteMask := prefixXor(quoteBits)
	quoteMask ^= s.prevInsideQuote
	s.prevInsideQuote = uint64(int64(quoteMask) >> 63) // broadcast sign bit

	// (c) unescaped control characters inside a string are a hard error.
	controlBits := k.Le(block, 0x1f)
	s.errorMask |= controlBits & quoteMask

	// (d) whitespace & structural classification.
	structuralBits := buildEqMask(k, block, structuralChars)
	whitespaceBits := buildEqMask(k, block, whitespaceChars)
	structuralBits &^= quoteMask
	structuralBits |= quoteBits // one entry per string open quote

	// (e) pseudo-structural character insertion: the first non-
	// whitespace byte following whitespace or a structural character,
	// outside strings, anchors atoms (true/false/null/numbers).
	pseudoPred := structuralBits | whitespaceBits
	shiftedPred := (pseudoPred << 1) | s.prevPseudoPred
	s.prevPseudoPred = pseudoPred >> 63
	pseudoStructurals := shiftedPred &^ whitespaceBits &^ quoteMask
	structuralBits |= pseudoStructurals

	// Closing quotes (quote bits that fall outside the half-open quote
	// mask) have served as pseudo-structural predecessors above and must
	// not themselves be treated as structural.
	structuralBits &^= quoteBits &^ quoteMask

	return structuralBits
}

// structuralIndexer walks the whole padded input, producing the
// structural index (spec.md §3.2) and the combined UTF-8/control-
// character validity state.
type structuralIndexer struct {
	state   *stage1State
	indexes []uint32
}

func newStructuralIndexer(k simdkernel.Kernel, sizeHint int) *structuralIndexer {
	return &structuralIndexer{
		state:   newStage1State(k),
		indexes: make([]uint32, 0, sizeHint),
	}
}

// Run scans the first n bytes of buf and returns the structural index
// with the mandatory sentinel offset appended. buf needs no padding:
// each block is copied into a zeroed scratch block, and structural bits
// that fall in the zero padding past the input are dropped.
func (si *structuralIndexer) Run(buf []byte, n int) ([]uint32, error) {
	var block [simdkernel.BlockSize]byte
	blockOffset := 0
	for blockOffset < n {
		end := blockOffset + simdkernel.BlockSize
		if end > len(buf) {
			end = len(buf)
		}
		nn := copy(block[:], buf[blockOffset:end])
		for i := nn; i < simdkernel.BlockSize; i++ {
			block[i] = 0
		}

		si.state.utf8.ValidateBlock(&block, nn)

		structurals := si.state.scanBlock(&block)
		if nn < simdkernel.BlockSize {
			structurals &= uint64(1)<<uint(nn) - 1
		}
		si.flatten(si.state.deferredStructurals, blockOffset-simdkernel.BlockSize)
		si.state.deferredStructurals = structurals

		blockOffset += simdkernel.BlockSize
	}
	// flatten the final block's structurals (offset by -BlockSize since
	// the loop above always published the PREVIOUS iteration's bitmap)
	si.flatten(si.state.deferredStructurals, blockOffset-simdkernel.BlockSize)

	if si.state.errorMask != 0 {
		return nil, perrors.New(perrors.UnescapedControl, int64(bits.TrailingZeros64(si.state.errorMask)), "stage1:control")
	}
	if !si.state.utf8.Finish() {
		return nil, perrors.New(perrors.InvalidUtf8, int64(n), "stage1:utf8")
	}
	if s := si.state.prevInsideQuote; s != 0 {
		return nil, perrors.New(perrors.UnterminatedString, int64(n), "stage1:quote")
	}
	if len(si.indexes) == 0 {
		return nil, perrors.New(perrors.Eof, 0, "stage1:empty")
	}

	si.indexes = append(si.indexes, uint32(n))
	return si.indexes, nil
}

// flatten appends one index entry per set bit of mask, each offset by
// base, using popcount+trailing-zero extraction the way the teacher's
// flatten_bits_incremental unrolls this loop for speed.
func (si *structuralIndexer) flatten(mask uint64, base int) {
	if base < 0 {
		return
	}
	for mask != 0 {
		tz := bits.TrailingZeros64(mask)
		si.indexes = append(si.indexes, uint32(base+tz))
		mask &= mask - 1
	}
}
