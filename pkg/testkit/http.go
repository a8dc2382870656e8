package testkit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response body for decoding in tests.
type Envelope struct {
	Status  int                    `json:"status"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Errors  map[string]interface{} `json:"errors"`
}

// Do sends a JSON request to handler. token, when set, is sent as a bearer
// token; body, when non-nil, is JSON encoded.
func Do(t testing.TB, handler http.Handler, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// Decode parses the envelope of rec and, when dest is non-nil, its data.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, dest interface{}) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest), "data: %s", string(env.Data))
	}
	return env
}
