package keygen

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
)

// fieldSep (ASCII unit separator) terminates every encoded value so that
// adjacent values cannot alias ("ab"+"c" vs "a"+"bc").
const fieldSep = 0x1f

// ArgsGenerator keys a call on its primitive argument values.
//
// Key material is every argument whose dynamic type is a string, bool,
// integer, float, or a slice of those ([]string, []bool, []int, []int64,
// []float64, or []any holding such values). Everything else - structs,
// maps, pointers, contexts - is excluded conservatively, so two calls
// that differ only in excluded arguments share a key. At least one
// argument must be present, eligible or not.
type ArgsGenerator struct {
	digest Digest
}

// ArgsOption configures an ArgsGenerator.
type ArgsOption func(*ArgsGenerator)

// WithArgsDigest overrides the digest used to fingerprint key material.
func WithArgsDigest(d Digest) ArgsOption {
	return func(g *ArgsGenerator) {
		g.digest = d
	}
}

// NewArgsGenerator creates the args-strategy generator.
func NewArgsGenerator(opts ...ArgsOption) *ArgsGenerator {
	g := &ArgsGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.digest == nil {
		g.digest = DigestMD5
	}
	return g
}

// Derive builds the key from the call's eligible argument values, in call
// order. It fails with ErrNoArguments on a zero-argument call; it never
// signals invalidation.
func (g *ArgsGenerator) Derive(_ context.Context, args []any) (Derivation, error) {
	if len(args) == 0 {
		return Derivation{}, ErrNoArguments
	}

	var b bytes.Buffer
	for _, arg := range args {
		appendArg(&b, arg)
	}

	return Derivation{Key: g.digest(b.Bytes())}, nil
}

// appendArg encodes v into b if its type is eligible as key material.
// Each value is type-tagged so "1" (string) and 1 (int) cannot collide.
func appendArg(b *bytes.Buffer, v any) {
	switch x := v.(type) {
	case string:
		writeField(b, 's', x)
	case bool:
		writeField(b, 'b', strconv.FormatBool(x))
	case int, int8, int16, int32, int64:
		writeField(b, 'i', fmt.Sprintf("%d", x))
	case uint, uint8, uint16, uint32, uint64:
		writeField(b, 'u', fmt.Sprintf("%d", x))
	case float32, float64:
		writeField(b, 'f', fmt.Sprintf("%g", x))
	case []string:
		openList(b)
		for _, e := range x {
			writeField(b, 's', e)
		}
		closeList(b)
	case []bool:
		openList(b)
		for _, e := range x {
			writeField(b, 'b', strconv.FormatBool(e))
		}
		closeList(b)
	case []int:
		openList(b)
		for _, e := range x {
			writeField(b, 'i', strconv.Itoa(e))
		}
		closeList(b)
	case []int64:
		openList(b)
		for _, e := range x {
			writeField(b, 'i', strconv.FormatInt(e, 10))
		}
		closeList(b)
	case []float64:
		openList(b)
		for _, e := range x {
			writeField(b, 'f', strconv.FormatFloat(e, 'g', -1, 64))
		}
		closeList(b)
	case []any:
		openList(b)
		for _, e := range x {
			appendArg(b, e)
		}
		closeList(b)
	}
}

// writeField writes one type-tagged, separator-terminated value.
func writeField(b *bytes.Buffer, tag byte, value string) {
	b.WriteByte(tag)
	b.WriteString(value)
	b.WriteByte(fieldSep)
}

// openList and closeList bracket slice elements so element boundaries
// cannot migrate between adjacent slice arguments.
func openList(b *bytes.Buffer) {
	b.WriteByte('[')
	b.WriteByte(fieldSep)
}

func closeList(b *bytes.Buffer) {
	b.WriteByte(']')
	b.WriteByte(fieldSep)
}

// Ensure ArgsGenerator implements Generator
var _ Generator = (*ArgsGenerator)(nil)
