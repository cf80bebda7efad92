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
	"bytes"
	"testing"
)

var tests = []struct {
	name    string
	str     string
	success bool
	want    []byte
}{
	{
		name:    "ascii-1",
		str:     `a`,
		success: true,
		want:    []byte(`a`),
	},
	{
		name:    "ascii-2",
		str:     `ba`,
		success: true,
		want:    []byte(`ba`),
	},
	{
		name:    "ascii-3",
		str:     `cba`,
		success: true,
		want:    []byte(`cba`),
	},
	{
		name:    "ascii-long",
		str:     `abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ`,
		success: true,
		want:    []byte(`abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ`),
	},
	{
		name:    "unicode-1",
		str:     `ሴ`,
		success: true,
		want:    []byte{225, 136, 180},
	},
	{
		name:    "unicode-short-by-1",
		str:     `\u123`,
		success: false,
	},
	{
		name:    "unicode-short-by-2",
		str:     `\u12`,
		success: false,
	},
	{
		name:    "unicode-short-by-3",
		str:     `\u1`,
		success: false,
	},
	{
		name:    "unicode-short-by-4",
		str:     `\u`,
		success: false,
	},
	{
		name:    "surrogate-pair-valid",
		str:     "\\ud83d\\ude00",
		success: true,
		want:    []byte{0xf0, 0x9f, 0x98, 0x80},
	},
	{
		name:    "surrogate-lone-high",
		str:     `\udbffሴ`,
		success: false,
	},
	{
		name:    "surrogate-lone-low",
		str:     `\udc00`,
		success: false,
	},
	{
		name:    "surrogate-pair-short-by-1",
		str:     `\ud83d\ude0`,
		success: false,
	},
	{
		name:    "quote1",
		str:     `a\"b`,
		success: true,
		want:    []byte{97, 34, 98},
	},
	{
		name:    "quote2",
		str:     `a\"b\"c`,
		success: true,
		want:    []byte{97, 34, 98, 34, 99},
	},
	{
		name:    "unicode-1-seq",
		str:     `ģ`,
		success: true,
		want:    []byte{196, 163},
	},
	{
		name:    "unicode-2-seqs",
		str:     `ģ䕧`,
		success: true,
		want:    []byte{196, 163, 228, 149, 167},
	},
	{
		name:    "unicode-3-seqs",
		str:     `ģ䕧覫`,
		success: true,
		want:    []byte{196, 163, 228, 149, 167, 232, 166, 171},
	},
	{
		name:    "unicode-4-seqs",
		str:     `ģ䕧覫췯`,
		success: true,
		want:    []byte{196, 163, 228, 149, 167, 232, 166, 171, 236, 183, 175},
	},
	{
		name:    "bad-escape",
		str:     `a\qb`,
		success: false,
	},
	{
		name:    "unescaped-control",
		str:     "a\tb",
		success: false,
	},
}

// TestParseString runs the decoded-string table above through
// parseString, appending a closing quote to each case the way a real
// JSON buffer would terminate the string.
func TestParseString(t *testing.T) {
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := append([]byte(tc.str), '"')
			got, consumed, err := parseString(src, nil)
			if tc.success {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if consumed != len(src) {
					t.Errorf("consumed %d, want %d", consumed, len(src))
				}
				if !bytes.Equal(got, tc.want) {
					t.Errorf("got %v, want %v", got, tc.want)
				}
			} else if err == nil {
				t.Errorf("expected error, got success with %v", got)
			}
		})
	}
}

func TestParseStringUnterminated(t *testing.T) {
	_, _, err := parseString([]byte(`abc`), nil)
	if err == nil {
		t.Error("expected error for string missing closing quote")
	}
}
