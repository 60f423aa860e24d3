package common

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
)

// ClientIP returns the caller address. The first X-Forwarded-For hop wins,
// then X-Real-IP, then RemoteAddr. Header values that are not IP addresses
// are ignored so a client cannot pick an arbitrary rate-limit key.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, ok := parseAddr(first); ok {
			return addr
		}
	}
	if addr, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return addr
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if addr, ok := parseAddr(remote); ok {
		return addr
	}
	return remote
}

func parseAddr(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// FormInt reads an integer form value, returning def when absent or malformed.
func FormInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// FormString reads a trimmed form value and whether the field was posted.
func FormString(r *http.Request, key string) (string, bool) {
	_ = r.ParseForm()
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", ok
	}
	return strings.TrimSpace(values[0]), true
}
