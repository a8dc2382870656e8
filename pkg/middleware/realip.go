package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxies are the peers allowed to report the client address through
// X-Forwarded-For or X-Real-Ip.
type Proxies []netip.Prefix

// ParseProxies reads IPs and CIDR ranges. Bad entries are skipped and
// reported together in the error.
func ParseProxies(list []string) (Proxies, error) {
	var (
		out  Proxies
		errs []error
	)
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("trusted proxy %q: not an IP or CIDR", raw))
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, errors.Join(errs...)
}

func (p Proxies) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// client walks X-Forwarded-For from the right and returns the first hop
// that is not a trusted proxy. ok is false when the peer itself is not
// trusted or the headers carry nothing usable.
func (p Proxies) client(r *http.Request) (string, bool) {
	if len(p) == 0 {
		return "", false
	}
	peer, err := netip.ParseAddr(peerHost(r.RemoteAddr))
	if err != nil || !p.trusts(peer) {
		return "", false
	}

	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		hops := strings.Split(strings.Join(values, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return "", false
			}
			if i == 0 || !p.trusts(addr) {
				return addr.Unmap().String(), true
			}
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-Ip")); real != "" {
		if addr, err := netip.ParseAddr(real); err == nil {
			return addr.Unmap().String(), true
		}
	}
	return "", false
}

// RealIP rewrites r.RemoteAddr to the forwarded client address when the
// request arrives from one of trusted. Everyone else keeps the socket
// address, forwarding headers or not.
//
//	r.Use(middleware.RealIP(proxies))
func RealIP(trusted Proxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := trusted.client(r); ok {
				port := "0"
				if _, p, err := net.SplitHostPort(r.RemoteAddr); err == nil {
					port = p
				}
				r.RemoteAddr = net.JoinHostPort(ip, port)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// peerHost strips the port from a RemoteAddr.
func peerHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
