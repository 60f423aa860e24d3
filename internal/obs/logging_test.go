package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/common"
)

func serveLogged(t *testing.T, l RequestLogger, status int, req *http.Request) {
	t.Helper()
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status == http.StatusSeeOther {
			http.Redirect(w, r, "/", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := RequestLogger{Logger: newLogger(&buf, "json", "info")}

	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req = req.WithContext(common.WithSessionID(req.Context(), "sess-1"))
	serveLogged(t, l, http.StatusSeeOther, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "info", line["level"])
	require.Equal(t, "redirect", line["format"])
	require.Equal(t, "/", line["location"])
	require.Equal(t, "sess-1", line["session_id"])
	require.EqualValues(t, http.StatusSeeOther, line["status"])
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := RequestLogger{Logger: newLogger(&buf, "json", "info")}

	serveLogged(t, l, http.StatusOK, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Zero(t, buf.Len(), "quiet path logged at info")

	serveLogged(t, l, http.StatusUnprocessableEntity, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	require.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	serveLogged(t, l, http.StatusServiceUnavailable, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Contains(t, buf.String(), `"level":"error"`)
}
