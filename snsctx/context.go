// Package snsctx carries per-command options through the driver call chain.
package snsctx

import "context"

type verboseKey struct{}

// IsVerbose reports whether transports should dump raw bus traffic.
func IsVerbose(ctx context.Context) bool {
	verbose, _ := ctx.Value(verboseKey{}).(bool)
	return verbose
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, verboseKey{}, value)
}
