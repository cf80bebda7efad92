package simdjson

import "github.com/parsekit/simdjson/internal/perrors"

// retAddrStack records, per nesting depth, which state scopeEnd should
// return control to once the closing '}' or ']' for that level is
// found -- 'a' for array_continue, 'o' for object_continue, 's' for
// start_continue. This is the same single-byte "return address" the
// teacher's original_source unified_machine keeps per depth instead of
// a real call stack, since depth is bounded and reused constantly.
type retAddrStack []byte

// unifiedMachine walks buf's structural index, grounded directly on
// the teacher's unified_machine goto state machine (see
// stage2_build_tape.go and its amd64 counterpart), built for real
// against parseString/scanNumber instead of that file's unimplemented
// placeholders. When ndjson is true, a structural index left over
// after a root value closes starts a new root instead of failing with
// TrailingData -- the same "close current root, open a new one" loop
// stage2_build_tape_amd64.go's start_continue performs on '\n', minus
// the literal newline check (the structural index already lands
// exactly on the next value's first byte).
func unifiedMachine(buf []byte, indexes []uint32, pj *internalParsedJson, ndjson bool) error {
	maxDepth := pj.maxDepth
	if maxDepth <= 0 {
		maxDepth = maxdepth
	}
	scope := make([]uint64, maxDepth)
	ret := make(retAddrStack, maxDepth)

	i := uint32(0)
	idx := uint32(0)
	var c byte
	depth := 0

	updateChar := func() {
		idx = indexes[i]
		i++
		if int(idx) < len(buf) {
			c = buf[idx]
		} else {
			c = 0
		}
	}

	pushScope := func(retTo byte) error {
		scope[depth] = pj.tapeLoc()
		ret[depth] = retTo
		depth++
		if depth >= maxDepth {
			return perrors.New(perrors.Depth, int64(idx), "stage2:depth")
		}
		return nil
	}

	writeString := func() error {
		_, err := pj.parseStringValue(buf, int(idx))
		return err
	}

	// atomDelimOK requires the byte right after a number or literal atom
	// to be structural or whitespace, the same single-byte check the
	// teacher's is_valid_true_atom/is_valid_false_atom/is_valid_null_atom
	// run via is_not_structural_or_whitespace against buf[len(literal)]
	// -- generalized here to numbers, whose length isn't fixed.
	atomDelimOK := func(end uint32) bool {
		if int(end) >= len(buf) {
			return false
		}
		return isStructuralOrWhitespace(buf[end])
	}

	writeNumber := func() error {
		tag, bits, consumed := scanNumber(buf[idx:])
		if tag == TagEnd || !atomDelimOK(idx+uint32(consumed)) {
			return perrors.NewChar(perrors.InvalidNumber, int64(idx), c, "stage2:number")
		}
		flags := uint64(0)
		if tag == TagFloat && numberLooksIntegral(buf[idx:idx+uint32(consumed)]) {
			if !pj.floatFallback {
				return perrors.NewChar(perrors.Overflow, int64(idx), c, "stage2:overflow")
			}
			flags = uint64(FloatOverflowedInteger)
		}
		pj.appendTagValFlags(tag, bits, flags)
		return nil
	}

	writeAtom := func() error {
		rest := buf[idx:]
		switch c {
		case 't':
			if len(rest) < 4 || string(rest[:4]) != "true" || !atomDelimOK(idx+4) {
				return perrors.NewChar(perrors.ExpectedTrue, int64(idx), c, "stage2:atom")
			}
			pj.appendScalarTag(0, c)
		case 'f':
			if len(rest) < 5 || string(rest[:5]) != "false" || !atomDelimOK(idx+5) {
				return perrors.NewChar(perrors.ExpectedFalse, int64(idx), c, "stage2:atom")
			}
			pj.appendScalarTag(0, c)
		case 'n':
			if len(rest) < 4 || string(rest[:4]) != "null" || !atomDelimOK(idx+4) {
				return perrors.NewChar(perrors.ExpectedNull, int64(idx), c, "stage2:atom")
			}
			pj.appendScalarTag(0, c)
		}
		return nil
	}

	scope[0] = pj.tapeLoc()
	pj.appendScalarTag(0, 'r')
	depth++
	if depth >= maxDepth {
		return perrors.New(perrors.Depth, 0, "stage2:depth")
	}

	if len(indexes) < 2 {
		return perrors.New(perrors.Eof, 0, "stage2:empty")
	}
	updateChar()
	goto rootValue

rootValue:
	switch c {
	case '{':
		scope[depth] = pj.tapeLoc()
		ret[depth] = 's'
		depth++
		if depth >= maxDepth {
			return perrors.New(perrors.Depth, int64(idx), "stage2:depth")
		}
		pj.appendScalarTag(0, c)
		goto objectBegin
	case '[':
		scope[depth] = pj.tapeLoc()
		ret[depth] = 's'
		depth++
		if depth >= maxDepth {
			return perrors.New(perrors.Depth, int64(idx), "stage2:depth")
		}
		pj.appendScalarTag(0, c)
		goto arrayBegin
	default:
		return perrors.NewChar(perrors.ExpectedArray, int64(idx), c, "stage2:root")
	}

startContinue:
	// indexes always carries one trailing sentinel entry (offset ==
	// len(buf)). A well-formed document never makes updateChar consume
	// it (on truncated input updateChar yields c == 0 there and the
	// current state fails), so reaching it -- i.e. i+1 == len(indexes)
	// -- is what "no structural chars remain" looks like.
	if i+1 == uint32(len(indexes)) {
		goto succeed
	}
	if !ndjson {
		return perrors.New(perrors.TrailingData, int64(idx), "stage2:root")
	}
	// A root's opening tag points one past its closing root tag, which
	// is what Iter.Root and Iter.Advance expect.
	pj.patchScopeEnd(scope[0], pj.tapeLoc()+1)
	pj.appendScalarTag(scope[0], 'r')
	scope[0] = pj.tapeLoc()
	pj.appendScalarTag(0, 'r')
	updateChar()
	goto rootValue

objectBegin:
	updateChar()
	switch c {
	case '"':
		if err := writeString(); err != nil {
			return err
		}
		goto objectKeyState
	case '}':
		goto scopeEnd
	default:
		return perrors.NewChar(perrors.ExpectedString, int64(idx), c, "stage2:object_begin")
	}

objectKeyState:
	updateChar()
	if c != ':' {
		return perrors.NewChar(perrors.ExpectedColon, int64(idx), c, "stage2:object_key")
	}
	updateChar()
	switch c {
	case '"':
		if err := writeString(); err != nil {
			return err
		}
	case 't', 'f', 'n':
		if err := writeAtom(); err != nil {
			return err
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := writeNumber(); err != nil {
			return err
		}
	case '{':
		if err := pushScope('o'); err != nil {
			return err
		}
		pj.appendScalarTag(0, c)
		goto objectBegin
	case '[':
		if err := pushScope('o'); err != nil {
			return err
		}
		pj.appendScalarTag(0, c)
		goto arrayBegin
	default:
		return perrors.NewChar(perrors.ExpectedString, int64(idx), c, "stage2:object_value")
	}

objectContinue:
	updateChar()
	switch c {
	case ',':
		updateChar()
		if c != '"' {
			return perrors.NewChar(perrors.ExpectedString, int64(idx), c, "stage2:object_continue")
		}
		if err := writeString(); err != nil {
			return err
		}
		goto objectKeyState
	case '}':
		goto scopeEnd
	default:
		return perrors.NewChar(perrors.ExpectedComma, int64(idx), c, "stage2:object_continue")
	}

scopeEnd:
	depth--
	pj.appendScalarTag(scope[depth], c)
	pj.patchScopeEnd(scope[depth], pj.tapeLoc())
	switch ret[depth] {
	case 'a':
		goto arrayContinue
	case 'o':
		goto objectContinue
	default:
		goto startContinue
	}

arrayBegin:
	updateChar()
	if c == ']' {
		goto scopeEnd
	}

mainArraySwitch:
	switch c {
	case '"':
		if err := writeString(); err != nil {
			return err
		}
	case 't', 'f', 'n':
		if err := writeAtom(); err != nil {
			return err
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := writeNumber(); err != nil {
			return err
		}
	case '{':
		if err := pushScope('a'); err != nil {
			return err
		}
		pj.appendScalarTag(0, c)
		goto objectBegin
	case '[':
		if err := pushScope('a'); err != nil {
			return err
		}
		pj.appendScalarTag(0, c)
		goto arrayBegin
	default:
		return perrors.NewChar(perrors.ExpectedComma, int64(idx), c, "stage2:array_value")
	}

arrayContinue:
	updateChar()
	switch c {
	case ',':
		updateChar()
		goto mainArraySwitch
	case ']':
		goto scopeEnd
	default:
		return perrors.NewChar(perrors.ExpectedComma, int64(idx), c, "stage2:array_continue")
	}

succeed:
	depth--
	if depth != 0 {
		return perrors.New(perrors.TrailingData, int64(idx), "stage2:depth_mismatch")
	}
	pj.patchScopeEnd(scope[depth], pj.tapeLoc()+1)
	pj.appendScalarTag(scope[depth], 'r')
	return nil
}
