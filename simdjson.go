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
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/parsekit/simdjson/internal/simdkernel"
)

// initialize (re)sizes pj's working buffers for a message of the given
// size, reusing existing backing arrays when they are already large
// enough -- the same heuristics the teacher's initialize used, carried
// over verbatim since they are independent of how stage1/stage2 work.
func (pj *internalParsedJson) initialize(size int) {
	avgTapeSize := size * 15 / 100
	if cap(pj.Tape) < avgTapeSize {
		pj.Tape = make([]uint64, 0, avgTapeSize)
	}
	pj.Tape = pj.Tape[:0]

	stringsSize := size / 10
	if stringsSize < 128 {
		stringsSize = 128 // always allocate at least 128 for the string buffer
	}
	if cap(pj.Strings) < stringsSize {
		pj.Strings = make([]byte, 0, stringsSize)
	}
	pj.Strings = pj.Strings[:0]

	if pj.maxDepth <= 0 {
		pj.maxDepth = maxdepth
	}
	if cap(pj.containingScopeOffset) < pj.maxDepth {
		pj.containingScopeOffset = make([]uint64, 0, pj.maxDepth)
	}
	pj.containingScopeOffset = pj.containingScopeOffset[:0]
}

func (pj *internalParsedJson) parseMessage(msg []byte) error {
	return pj.parseMessageInternal(msg, false)
}

func (pj *internalParsedJson) parseMessageNdjson(msg []byte) error {
	return pj.parseMessageInternal(msg, true)
}

// parseMessageInternal runs both stages of the parser over msg in
// sequence. The teacher ran stage1 (findStructuralIndices) and stage2
// (unifiedMachine) concurrently over a channel of index batches so
// stage2 could start on the first block before stage1 finished the
// last one; this pipeline only ever exists to overlap CPU work, not to
// change the result, so it is dropped here in favor of running the
// stages one after another directly against the in-memory index slice
// stage1 returns.
func (pj *internalParsedJson) parseMessageInternal(msg []byte, ndjson bool) (err error) {
	// Cache message so we can point directly to strings.
	pj.Message = bytes.TrimSpace(msg)
	pj.initialize(len(pj.Message))

	indexer := newStructuralIndexer(simdkernel.Default(), len(pj.Message)/4+16)
	indexes, err := indexer.Run(pj.Message, len(pj.Message))
	if err != nil {
		return err
	}

	return unifiedMachine(pj.Message, indexes, pj, ndjson)
}

// applyOptions runs every opt against pj's defaults, bailing on the
// first one that reports an error -- options.go's WithCopyStrings
// keeps its teacher default (copy) when no option overrides it.
func (pj *internalParsedJson) applyOptions(opts []ParserOption) error {
	pj.copyStrings = alwaysCopyStrings
	pj.floatFallback = true
	for _, opt := range opts {
		if err := opt(pj); err != nil {
			return err
		}
	}
	return nil
}

// Parse a block of data and return the parsed JSON.
// An optional block of previously parsed json can be supplied to reduce allocations.
func Parse(b []byte, reuse *ParsedJson, opts ...ParserOption) (*ParsedJson, error) {
	var pj *internalParsedJson
	if reuse != nil && reuse.internal != nil {
		pj = reuse.internal
		pj.ParsedJson = *reuse
		pj.ParsedJson.internal = nil
		reuse = &ParsedJson{}
	}
	if pj == nil {
		pj = &internalParsedJson{}
	}
	if err := pj.applyOptions(opts); err != nil {
		return nil, err
	}
	if err := pj.parseMessage(b); err != nil {
		return nil, err
	}
	parsed := pj.ParsedJson
	pj.ParsedJson = ParsedJson{}
	if pj.reuse {
		parsed.internal = pj
	}
	return &parsed, nil
}

// ParseND will parse newline delimited JSON.
// An optional block of previously parsed json can be supplied to reduce allocations.
func ParseND(b []byte, reuse *ParsedJson, opts ...ParserOption) (*ParsedJson, error) {
	var pj internalParsedJson
	if reuse != nil {
		pj.ParsedJson = *reuse
	}
	if err := pj.applyOptions(opts); err != nil {
		return nil, err
	}
	if err := pj.parseMessageNdjson(b); err != nil {
		return nil, err
	}
	return &pj.ParsedJson, nil
}

// A Stream is used to stream back results.
type Stream struct {
	Value *ParsedJson
	Error error
}

// ParseNDStream will parse a stream and return parsed JSON to the supplied result channel.
// Each element is contained within a root tag.
//   <root>Element 1</root><root>Element 2</root>...
// Each result will contain an unspecified number of full elements,
// so it can be assumed that each result starts and ends with a root tag.
// The parser will keep parsing until writes to the result stream blocks.
// A stream is finished when a non-nil Error is returned.
// If the stream was parsed until the end the Error value will be io.EOF.
// The channel will be closed after an error has been returned.
func ParseNDStream(r io.Reader, res chan<- Stream) {
	const tmpSize = 10 << 20
	buf := bufio.NewReaderSize(r, tmpSize)
	tmp := make([]byte, tmpSize)
	go func() {
		defer close(res)
		var pj internalParsedJson
		for {
			tmp = tmp[:tmpSize]
			n, err := buf.Read(tmp)
			if err != nil && err != io.EOF {
				res <- Stream{Error: fmt.Errorf("reading input: %w", err)}
				return
			}
			tmp = tmp[:n]
			// Finish on a full line so a JSON object is never split mid-way.
			if err != io.EOF {
				rest, rerr := buf.ReadBytes('\n')
				if rerr != nil && rerr != io.EOF {
					res <- Stream{Error: fmt.Errorf("reading input: %w", rerr)}
					return
				}
				tmp = append(tmp, rest...)
			}
			if len(tmp) > 0 {
				pj.ParsedJson = ParsedJson{}
				if parseErr := pj.parseMessageNdjson(tmp); parseErr != nil {
					res <- Stream{Error: fmt.Errorf("parsing input: %w", parseErr)}
					return
				}
				out := pj.ParsedJson
				res <- Stream{Value: &out}
			}
			if err != nil {
				res <- Stream{Error: err}
				return
			}
		}
	}()
}
