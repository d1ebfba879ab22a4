// Package keygen derives cache keys from function call arguments.
//
// It provides a Generator interface with three strategies: args (digest of
// the call's primitive argument values), request (digest of the first
// argument's sorted query parameters, with header-driven invalidation),
// and custom (a user func adapted via NewFuncGenerator).
package keygen
