package keygen

import (
	"context"
	"errors"
	"fmt"
)

// NoCache is the cache-control directive that forces invalidation of the
// derived key before lookup.
const NoCache = "no-cache"

// Sentinel errors for key derivation.
var (
	ErrNoArguments     = errors.New("keygen: call has no arguments to key on")
	ErrNotRequest      = errors.New("keygen: first argument is not a request")
	ErrCacheControl    = errors.New("keygen: invalid cache-control directive")
	ErrNilKeyFunc      = errors.New("keygen: key func is nil")
	ErrUnknownStrategy = errors.New("keygen: unknown key strategy")
)

// Derivation is the outcome of deriving a cache identity from one call.
type Derivation struct {
	// Key addresses the call's entry in the store.
	Key string

	// Invalidate reports that the call asked for its entry to be
	// dropped before lookup (the "no-cache" signal).
	Invalidate bool
}

// Generator derives a cache key, and possibly an invalidation signal,
// from the arguments of one call.
//
// Contract:
// - Determinism: equivalent calls must derive equal keys.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a failed derivation prevents the wrapped call entirely, so
//   implementations should fail only on misuse, never on data.
type Generator interface {
	// Derive produces the Derivation for one call's arguments.
	Derive(ctx context.Context, args []any) (Derivation, error)
}

// Strategy names a built-in key-derivation strategy.
type Strategy string

const (
	// StrategyArgs keys on the call's primitive argument values.
	StrategyArgs Strategy = "args"

	// StrategyRequest keys on the first argument's query parameters.
	StrategyRequest Strategy = "request"
)

// ForStrategy returns the default generator for a built-in strategy.
// The empty strategy means StrategyArgs.
func ForStrategy(s Strategy) (Generator, error) {
	switch s {
	case StrategyArgs, "":
		return NewArgsGenerator(), nil
	case StrategyRequest:
		return NewRequestGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Func derives a key and a cache-control directive from one call. The
// directive must be "" (cache normally) or NoCache (invalidate the derived
// key before lookup); anything else violates the contract.
type Func func(ctx context.Context, args []any) (key string, cacheControl string)

type funcGenerator struct {
	fn Func
}

// NewFuncGenerator adapts fn into a Generator, enforcing the directive
// contract: a directive other than "" or NoCache yields ErrCacheControl.
// The returned key is used verbatim; any string is a valid key.
func NewFuncGenerator(fn Func) Generator {
	return funcGenerator{fn: fn}
}

func (g funcGenerator) Derive(ctx context.Context, args []any) (Derivation, error) {
	if g.fn == nil {
		return Derivation{}, ErrNilKeyFunc
	}

	key, cacheControl := g.fn(ctx, args)
	switch cacheControl {
	case "":
		return Derivation{Key: key}, nil
	case NoCache:
		return Derivation{Key: key, Invalidate: true}, nil
	default:
		return Derivation{}, fmt.Errorf("%w: %q", ErrCacheControl, cacheControl)
	}
}

// Ensure funcGenerator implements Generator
var _ Generator = funcGenerator{}
