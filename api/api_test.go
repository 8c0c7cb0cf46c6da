// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/runtime"
)

func newRuntime(t *testing.T, withEvents bool) *runtime.Runtime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var edb *eventdb.EventDB
	if withEvents {
		edb, err = eventdb.NewMem()
		require.NoError(t, err)
		t.Cleanup(func() { edb.Close() })
	}
	rt, err := runtime.New(db, genesis.NewDevnet(), edb, runtime.Options{})
	require.NoError(t, err)
	return rt
}

func newServer(t *testing.T, rt *runtime.Runtime, opts Options) *httptest.Server {
	handler, closer := New(rt, opts)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closer()
	})
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}

func TestRoutes(t *testing.T) {
	rt := newRuntime(t, true)
	ts := newServer(t, rt, Options{AllowedOrigins: "*", LogsLimit: 10, BacktraceLimit: 10})

	res, err := http.Get(ts.URL + "/engine")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, rt.Genesis().ID().String(), res.Header.Get("x-genesis-id"))

	_, code := httpGet(t, ts.URL+"/farms/0")
	assert.Equal(t, http.StatusOK, code)

	_, code = httpGet(t, ts.URL+"/calls/1")
	assert.Equal(t, http.StatusNotFound, code)

	res, err = http.Post(ts.URL+"/logs/calls", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	_, code = httpGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNoEvents(t *testing.T) {
	ts := newServer(t, newRuntime(t, false), Options{})

	res, err := http.Post(ts.URL+"/logs/calls", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newServer(t, newRuntime(t, false), Options{AllowedOrigins: "https://example.org, HTTPS://acreage.io"})

	for _, tt := range []struct {
		origin  string
		allowed string
	}{
		{"https://example.org", "https://example.org"},
		{"https://acreage.io", "https://acreage.io"},
		{"https://evil.org", ""},
	} {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/engine", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, tt.allowed, res.Header.Get("Access-Control-Allow-Origin"), tt.origin)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.JSONHandler(&buf))
	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "test body", string(body))
		w.WriteHeader(http.StatusAccepted)
	}), logger)

	request := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString("test body"))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	id := recorder.Header().Get(requestIDHeader)
	assert.Len(t, id, 36)

	out := buf.String()
	assert.Contains(t, out, `"msg":"API Request"`)
	assert.Contains(t, out, `"id":"`+id+`"`)
	assert.Contains(t, out, `"URI":"/test"`)
	assert.Contains(t, out, `"Method":"POST"`)
	assert.Contains(t, out, `"Body":"test body"`)

	// a given id is kept
	request = httptest.NewRequest(http.MethodGet, "/test", nil)
	request.Header.Set(requestIDHeader, "req-1")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "req-1", recorder.Header().Get(requestIDHeader))
}
