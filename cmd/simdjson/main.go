// Command simdjson parses a JSON or NDJSON file (or stdin) and reports
// what it found, grounded on the teacher's examples/simdjson_example.go
// and examples/find/start2.go.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/parsekit/simdjson"
)

func main() {
	var (
		ndjson      = flag.Bool("ndjson", false, "parse the input as newline-delimited JSON")
		dump        = flag.Bool("dump", false, "dump the raw tape instead of reserializing")
		reserialize = flag.Bool("reserialize", false, "round-trip the parsed tape back to JSON and print it")
		bench       = flag.Bool("bench", false, "parse the input once to warm up, then report parse throughput")
	)
	flag.Parse()

	var msg []byte
	var err error
	if args := flag.Args(); len(args) > 0 {
		msg, err = os.ReadFile(args[0])
	} else {
		msg, err = readAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	pj, err := parse(msg, *ndjson)
	if err != nil {
		log.Fatalf("parsing input: %v", err)
	}

	switch {
	case *dump:
		dumpTape(pj)
	case *reserialize:
		i := pj.Iter()
		out, err := i.MarshalJSON()
		if err != nil {
			log.Fatalf("reserializing: %v", err)
		}
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
	case *bench:
		runBench(msg, *ndjson)
	default:
		fmt.Printf("parsed %d bytes into %d tape entries, %d string bytes\n",
			len(msg), len(pj.Tape), len(pj.Strings))
	}
}

func parse(msg []byte, ndjson bool) (*simdjson.ParsedJson, error) {
	if ndjson {
		return simdjson.ParseND(msg, nil)
	}
	return simdjson.Parse(msg, nil)
}

// dumpTape prints every tape entry's tag and payload, the CLI-visible
// counterpart of the teacher's dump_raw_tape debug helper (the library
// itself has no tape-dump function).
func dumpTape(pj *simdjson.ParsedJson) {
	for idx, v := range pj.Tape {
		tag := simdjson.Tag(v >> simdjson.JSONTAGOFFSET)
		payload := v & simdjson.JSONVALUEMASK
		fmt.Printf("%d: %s %d\n", idx, tag, payload)
	}
}

func runBench(msg []byte, ndjson bool) {
	const rounds = 50
	start := time.Now()
	var n int
	for i := 0; i < rounds; i++ {
		pj, err := parse(msg, ndjson)
		if err != nil {
			log.Fatalf("parsing input: %v", err)
		}
		n = len(pj.Tape)
	}
	elapsed := time.Since(start)
	mbPerSec := float64(len(msg)) * rounds / elapsed.Seconds() / (1 << 20)
	fmt.Printf("%d rounds, %d tape entries, %.1f MB/s\n", rounds, n, mbPerSec)
}

func readAll(f *os.File) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 1<<20)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}
