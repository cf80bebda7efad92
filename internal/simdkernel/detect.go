package simdkernel

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

var (
	detectOnce   sync.Once
	detectedTier Tier
)

// Detect probes the host CPU once (via github.com/klauspost/cpuid/v2,
// the same dependency the teacher uses for its SupportedCPU check) and
// caches the result for the lifetime of the process, matching spec.md
// §9's "runtime ISA dispatch... must cache its result and is
// idempotent".
func Detect() Tier {
	detectOnce.Do(func() {
		switch {
		case cpuid.CPU.Supports(cpuid.AVX2, cpuid.CLMUL):
			detectedTier = TierAVX2
		case cpuid.CPU.Supports(cpuid.SSE42):
			detectedTier = TierSSE42
		case cpuid.CPU.Has(cpuid.ASIMD):
			detectedTier = TierNEON
		default:
			detectedTier = TierGeneric
		}
	})
	return detectedTier
}

// New returns the Kernel for the given tier. All tiers currently share
// the portable word-loop implementation (see word.go) — the point of
// the abstraction is that C4/C2/C3 never need to know that, and a
// hardware-intrinsic Kernel can replace any one tier without touching
// a caller.
func New(tier Tier) Kernel {
	return newWordKernel(tier)
}

// Default returns the Kernel for the detected host tier.
func Default() Kernel {
	return New(Detect())
}
