package simdjson

// ParserOption is a parser option.
type ParserOption func(pj *internalParsedJson) error

// WithCopyStrings will copy strings so they no longer reference the input.
// For enhanced performance, simdjson-go can point back into the original JSON buffer for strings,
// however this can lead to issues in streaming use cases scenarios, or scenarios in which
// the underlying JSON buffer is reused. So the default behaviour is to create copies of all
// strings (not just those transformed anyway for unicode escape characters) into the separate
// Strings buffer (at the expense of using more memory and less performance).
// Default: true - strings are copied.
func WithCopyStrings(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.copyStrings = b
		return nil
	}
}

// WithMaxDepth bounds object/array nesting. The root scope counts as
// one level, and the parse fails with a perrors.Depth error as soon as
// the level count reaches depth, so at most depth-2 nested
// objects/arrays are accepted.
// Default: maxdepth (128).
func WithMaxDepth(depth int) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.maxDepth = depth
		return nil
	}
}

// WithFloatFallback controls how a number written in integer notation
// that overflows both int64 and uint64 is handled. When true (the
// default) it is recorded on the tape as TagFloat with
// FloatOverflowedInteger set. When false, the parse fails instead.
func WithFloatFallback(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.floatFallback = b
		return nil
	}
}

// WithReuse signals that the destination *ParsedJson will be reused
// for subsequent calls to Parse, so its backing arrays should be kept
// rather than released after use.
func WithReuse(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.reuse = b
		return nil
	}
}
