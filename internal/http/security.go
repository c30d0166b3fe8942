package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
)

// securityMetrics tracks security-related events.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// Networks whose forwarding headers are honored when they are the
// direct peer.
var trustedProxyNets = func() []netip.Prefix {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	}
	nets := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		nets = append(nets, netip.MustParsePrefix(c))
	}
	return nets
}()

func fromTrustedProxy(addr netip.Addr) bool {
	for _, n := range trustedProxyNets {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr resolves the caller's IP. X-Forwarded-For and X-Real-IP
// are trusted only when the direct peer is a known proxy network;
// otherwise the socket address wins.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	direct, err := netip.ParseAddr(host)
	if err != nil || !fromTrustedProxy(direct) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if _, err := netip.ParseAddr(first); err == nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return host
}

// Path and query fragments no client of this JSON API would send.
var scannerFragments = []string{
	"../", "..\\", ".env", ".git", ".ssh",
	"wp-admin", "phpmyadmin", "config.php",
	"<script", "javascript:", "union select", "etc/passwd",
}

// suspiciousRequest flags traffic that looks like vulnerability
// scanning rather than API use. Flagged requests are logged, not
// blocked.
func suspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	flagged := false

	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, f := range scannerFragments {
		if strings.Contains(target, f) {
			flagged = true
			break
		}
	}

	switch r.Method {
	case "TRACE", "TRACK", "CONNECT":
		flagged = true
	}

	if len(r.URL.String()) > 2048 {
		flagged = true
	}

	if flagged && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return flagged
}
