package security

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultCSRFName names both the cookie and the header carrying the token.
const DefaultCSRFName = "X-CSRF-Token"

// CSRFField is the form field HTML forms submit the token in.
const CSRFField = "csrf_token"

type csrfCtxKey struct{}

// CSRF protects form posts using the double-submit technique. Safe requests
// receive a token cookie; unsafe requests must echo it in the header or the
// csrf_token form field.
type CSRF struct {
	Name   string
	Secure bool
}

// Token returns the token issued to the current request.
func Token(ctx context.Context) string {
	v, _ := ctx.Value(csrfCtxKey{}).(string)
	return v
}

func (c CSRF) name() string {
	if n := strings.TrimSpace(c.Name); n != "" {
		return n
	}
	return DefaultCSRFName
}

// Middleware issues the token cookie and enforces it on non-idempotent requests.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	name := c.name()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var existing string
		if cookie, err := r.Cookie(name); err == nil {
			existing = strings.TrimSpace(cookie.Value)
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			if existing == "" {
				existing = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    existing,
					Path:     "/",
					Secure:   c.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfCtxKey{}, existing)))
			return
		}

		if existing == "" {
			http.Error(w, "missing csrf cookie", http.StatusForbidden)
			return
		}
		token := strings.TrimSpace(r.Header.Get(name))
		if token == "" {
			token = strings.TrimSpace(r.PostFormValue(CSRFField))
		}
		if token == "" {
			http.Error(w, "missing csrf token", http.StatusForbidden)
			return
		}
		if !constantTimeEqual(token, existing) {
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfCtxKey{}, existing)))
	})
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
