package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorUsesAppErrorShape(t *testing.T) {
	rr := httptest.NewRecorder()
	err := Unprocessable("invalid review", map[string]string{"name": "required"})
	WriteError(rr, errors.Join(errors.New("context"), err))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, CodeValidation, body.Error.Code)
	require.Equal(t, "invalid review", body.Error.Message)
	require.NotNil(t, body.Error.Details)
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("dial tcp 10.0.0.1:6379: refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "10.0.0.1")
	require.Contains(t, rr.Body.String(), CodeInternal)
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("render failed", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "render failed: boom", err.Error())
}

func TestDataOmitsNilMeta(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusOK, map[string]int{"n": 1}, nil)
	require.JSONEq(t, `{"data":{"n":1}}`, rr.Body.String())
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{name: "forwarded first hop", xff: "203.0.113.7, 10.0.0.1", remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "forwarded garbage falls through", xff: "not-an-ip", realIP: "198.51.100.2", remote: "10.0.0.2:1234", want: "198.51.100.2"},
		{name: "remote addr", remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "mapped v4", remote: "[::ffff:192.0.2.9]:80", want: "192.0.2.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			require.Equal(t, tc.want, ClientIP(req))
		})
	}
}

func TestFormHelpers(t *testing.T) {
	form := url.Values{"rating": {" 4 "}, "bad": {"x"}, "name": {"  Ana "}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.Equal(t, 4, FormInt(req, "rating", 0))
	require.Equal(t, 7, FormInt(req, "bad", 7))
	require.Equal(t, 0, FormInt(req, "missing", 0))

	name, ok := FormString(req, "name")
	require.True(t, ok)
	require.Equal(t, "Ana", name)
	_, ok = FormString(req, "missing")
	require.False(t, ok)
}
