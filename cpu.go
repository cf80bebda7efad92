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

import "github.com/parsekit/simdjson/internal/simdkernel"

// SupportedCPU reports whether this host can run the parser. Unlike
// the teacher, which hard-required AVX2+CLMUL because its stage1/stage2
// are asm, every ISA tier down to simdkernel.TierGeneric is a real,
// correct implementation here, so this always returns true -- kept as
// a function rather than removed so callers written against the
// teacher's API still compile unchanged.
func SupportedCPU() bool {
	return true
}

// CPUTier reports which simdkernel capability tier Parse will select
// on this host, detected once per process and cached by
// simdkernel.Detect.
func CPUTier() string {
	return simdkernel.Detect().String()
}
