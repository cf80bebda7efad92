package simdkernel

import "testing"

func block(s string) *[BlockSize]byte {
	var b [BlockSize]byte
	copy(b[:], s)
	return &b
}

func TestEq(t *testing.T) {
	k := New(TierGeneric)
	b := block(`{"a":1}`)
	got := k.Eq(b, '"')
	want := uint64(1<<1 | 1<<3)
	if got != want {
		t.Errorf("Eq(%q, '\"') = %b, want %b", b[:8], got, want)
	}
}

func TestGtLe(t *testing.T) {
	k := New(TierGeneric)
	var b [BlockSize]byte
	b[0], b[1], b[2] = 0x1f, 0x20, 0x7f
	gt := k.Gt(&b, 0x1f)
	le := k.Le(&b, 0x1f)
	if gt&1 != 0 {
		t.Error("Gt: 0x1f should not be > 0x1f")
	}
	if gt&2 == 0 || gt&4 == 0 {
		t.Error("Gt: 0x20 and 0x7f should be > 0x1f")
	}
	if le&1 == 0 {
		t.Error("Le: 0x1f should be <= 0x1f")
	}
	if le&2 != 0 {
		t.Error("Le: 0x20 should not be <= 0x1f")
	}
}

func TestShuffleLowNibble(t *testing.T) {
	k := New(TierGeneric)
	var lut [16]byte
	for i := range lut {
		lut[i] = byte(i * 2)
	}
	var b [BlockSize]byte
	b[0] = 0x05
	b[1] = 0x1f // low nibble 0xf
	out := k.ShuffleLowNibble(&b, lut)
	if out[0] != 10 || out[1] != 30 {
		t.Errorf("ShuffleLowNibble got %d,%d want 10,30", out[0], out[1])
	}
}

func TestShuffleHighNibble(t *testing.T) {
	k := New(TierGeneric)
	var lut [16]byte
	for i := range lut {
		lut[i] = byte(i)
	}
	var b [BlockSize]byte
	b[0] = 0xf0 // high nibble 0xf
	b[1] = 0x80 // high nibble 0x8
	out := k.ShuffleHighNibble(&b, lut)
	if out[0] != 0xf || out[1] != 0x8 {
		t.Errorf("ShuffleHighNibble got %#x,%#x want 0xf,0x8", out[0], out[1])
	}
}

func TestSatSubU8(t *testing.T) {
	k := New(TierGeneric)
	var a, b [BlockSize]byte
	a[0], b[0] = 5, 10
	a[1], b[1] = 10, 5
	out := k.SatSubU8(a, b)
	if out[0] != 0 {
		t.Errorf("SatSubU8 underflow should saturate to 0, got %d", out[0])
	}
	if out[1] != 5 {
		t.Errorf("SatSubU8 got %d want 5", out[1])
	}
}

func TestAlignRight(t *testing.T) {
	k := New(TierGeneric)
	var prev, cur [BlockSize]byte
	for i := range prev {
		prev[i] = byte(i)
	}
	for i := range cur {
		cur[i] = byte(100 + i)
	}
	out := k.AlignRight(&prev, &cur, 1)
	// out[i] = concat(prev, cur)[i+1]: out[0] is prev[1], and the last
	// lane crosses the boundary to cur[0].
	if out[0] != prev[1] {
		t.Errorf("AlignRight[0] = %d, want %d", out[0], prev[1])
	}
	lastIdx := BlockSize - 1
	// out[lastIdx] = concat[lastIdx+1] = concat[BlockSize] = cur[0]
	if out[lastIdx] != cur[0] {
		t.Errorf("AlignRight[last] = %d, want cur[0]=%d", out[lastIdx], cur[0])
	}
}

func TestDetectIdempotent(t *testing.T) {
	a := Detect()
	b := Detect()
	if a != b {
		t.Errorf("Detect() not idempotent: %v != %v", a, b)
	}
}
