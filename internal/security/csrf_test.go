package security

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func csrfHandler(seen *string) http.Handler {
	return CSRF{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = Token(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFIssuesCookieOnSafeRequest(t *testing.T) {
	var seen string
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, DefaultCSRFName, cookies[0].Name)
	require.Equal(t, cookies[0].Value, seen)
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFName, Value: "kept"})
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)

	require.Empty(t, rr.Result().Cookies())
	require.Equal(t, "kept", seen)
}

func TestCSRFBlocksMissingToken(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFName, Value: "tok"})
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCSRFBlocksMissingCookie(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	req.Header.Set(DefaultCSRFName, "tok")
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCSRFAcceptsHeader(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	req.Header.Set(DefaultCSRFName, "tok")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFName, Value: "tok"})
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFAcceptsFormField(t *testing.T) {
	var seen string
	form := url.Values{CSRFField: {"tok"}}
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFName, Value: "tok"})
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "tok", seen)
}

func TestCSRFRejectsMismatch(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	req.Header.Set(DefaultCSRFName, "other")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFName, Value: "tok"})
	rr := httptest.NewRecorder()
	csrfHandler(&seen).ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}
