package context

import (
	"context"
)

const contextKeyClientAddr = contextKey("clientAddr")

// ClientAddrFromContext extracts the address of the calling client.
func ClientAddrFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(contextKeyClientAddr).(string)

	return addr, ok && addr != ""
}

// WithClientAddr creates a new context carrying the client address.
// Rate limiting and request logs key on it.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, contextKeyClientAddr, addr)
}
