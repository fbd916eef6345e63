package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/google/uuid"

	context_ "github.com/mkrupp/socialsvc/internal/infra/context"
)

const (
	TraceIDHeader       = "X-Request-ID"
	ForwardedForHeader  = "X-Forwarded-For"
	maxTraceIDHeaderLen = 128
)

// TrustedProxies lists the networks allowed to report the client address
// through X-Forwarded-For. The header of any other peer is ignored.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies parses a comma-separated list of IP addresses and CIDR
// prefixes. Invalid entries are reported in the error and left out of the
// returned list.
func ParseTrustedProxies(s string) (TrustedProxies, error) {
	var (
		proxies TrustedProxies
		errs    []error
	)

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				errs = append(errs, fmt.Errorf("trusted proxy %q: %w", entry, err))

				continue
			}

			proxies = append(proxies, prefix.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("trusted proxy %q: %w", entry, err))

			continue
		}

		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return proxies, errors.Join(errs...)
}

func (p TrustedProxies) contains(addr netip.Addr) bool {
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// ClientAddr returns the address of the client that sent r. It is the
// connection's peer unless that peer is a trusted proxy, in which case
// X-Forwarded-For is walked from the right and the first hop outside the
// trusted networks wins.
func (p TrustedProxies) ClientAddr(r *http.Request) string {
	peer := peerHost(r.RemoteAddr)

	addr, err := netip.ParseAddr(peer)
	if err != nil || !p.contains(addr.Unmap()) {
		return peer
	}

	hops := forwardedHops(r)

	client := peer

	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(hops[i])
		if err != nil {
			break
		}

		hop = hop.Unmap()
		client = hop.String()

		if !p.contains(hop) {
			break
		}
	}

	return client
}

func forwardedHops(r *http.Request) []string {
	var hops []string

	for _, value := range r.Header.Values(ForwardedForHeader) {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}

	return hops
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}

// TracingMiddleware creates middleware that adds request tracing.
// It uses the X-Request-ID header if present, otherwise generates a new UUIDv7,
// and echoes the ID back in the response. The trace ID and the client address
// resolved through proxies are added to the request context.
func TracingMiddleware(next http.Handler, proxies TrustedProxies) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)

		ctx := context_.WithTraceID(r.Context(), traceID)
		ctx = context_.WithClientAddr(ctx, proxies.ClientAddr(r))

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getTraceID(r *http.Request) string {
	if traceID := r.Header.Get(TraceIDHeader); traceID != "" && len(traceID) <= maxTraceIDHeaderLen {
		return traceID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
