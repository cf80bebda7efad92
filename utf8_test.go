package simdjson

import (
	"unicode/utf8"

	"github.com/parsekit/simdjson/internal/simdkernel"
)

func validateUTF8(data []byte) bool {
	v := newUTF8Validator(simdkernel.New(simdkernel.TierGeneric))
	var block [simdkernel.BlockSize]byte
	for i := 0; i < len(data); i += simdkernel.BlockSize {
		n := copy(block[:], data[i:])
		for j := n; j < simdkernel.BlockSize; j++ {
			block[j] = 0
		}
		v.ValidateBlock(&block, n)
	}
	return v.Finish()
}

func fuzzCaseValid(data []byte) bool {
	return validateUTF8(data) == utf8.Valid(data)
}
