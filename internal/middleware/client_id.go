package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UnknownClientID is used when no forwarding header identifies the caller.
// All such requests share one rate-limit bucket.
const UnknownClientID = "unknown"

// Forwarding headers consulted, in order, to identify the caller.
const (
	ForwardedForHeader   = "X-Forwarded-For"
	CFConnectingIPHeader = "CF-Connecting-IP"
)

// ResolveClientID derives a best-effort client identifier from proxy
// headers: the first X-Forwarded-For entry, then CF-Connecting-IP, then
// UnknownClientID. The socket address is not used because behind the
// platform proxy it identifies the proxy, not the client.
func ResolveClientID(r *http.Request) string {
	if xff := r.Header.Get(ForwardedForHeader); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if cf := strings.TrimSpace(r.Header.Get(CFConnectingIPHeader)); cf != "" {
		return cf
	}

	return UnknownClientID
}

// ClientID resolves the client identifier once and stores it in the context.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientIDKey, ResolveClientID(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientID retrieves the client identifier from context.
func GetClientID(ctx context.Context) string {
	if id, ok := ctx.Value(ClientIDKey).(string); ok {
		return id
	}
	return ""
}

// clientIDFor returns the context client id, resolving it from r if the
// ClientID middleware did not run.
func clientIDFor(r *http.Request) string {
	if id := GetClientID(r.Context()); id != "" {
		return id
	}
	return ResolveClientID(r)
}
