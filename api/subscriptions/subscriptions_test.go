// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/runtime"
)

func initServer(t *testing.T, backtraceLimit uint64) (*runtime.Runtime, *httptest.Server) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt, err := runtime.New(db, genesis.NewDevnet(), nil, runtime.Options{})
	require.NoError(t, err)

	subs := New(rt, nil, backtraceLimit)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		subs.Close()
	})
	return rt, ts
}

func execute(t *testing.T, rt *runtime.Runtime, c *call.Call) {
	_, err := rt.Execute(c)
	require.NoError(t, err)
}

func dial(ts *httptest.Server, subject, query string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/" + subject, RawQuery: query}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}

func readResult(t *testing.T, conn *websocket.Conn) *runtime.Result {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var res runtime.Result
	require.NoError(t, conn.ReadJSON(&res))
	return &res
}

func TestSubscribeResults(t *testing.T) {
	rt, ts := initServer(t, 10)
	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "alice", Time: 0, Amount: "100", Candidate: "baker"})
	execute(t, rt, &call.Call{Op: call.OpWithdraw, Sender: "bob", Time: 1, Amount: "1"})

	conn, resp, err := dial(ts, "results", "pos=1")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "websocket", resp.Header.Get("Upgrade"))

	res := readResult(t, conn)
	assert.Equal(t, uint64(1), res.Seq)
	assert.True(t, res.OK())
	require.NotNil(t, res.Receipt)
	assert.Len(t, res.Receipt.Transfers, 1)

	res = readResult(t, conn)
	assert.Equal(t, uint64(2), res.Seq)
	assert.Equal(t, runtime.StatusReverted, res.Status)
	assert.Equal(t, "insufficient stake", res.Error)

	// streamed as soon as it is sequenced
	execute(t, rt, &call.Call{Op: call.OpHarvest, Sender: "alice", Time: 5})
	res = readResult(t, conn)
	assert.Equal(t, uint64(3), res.Seq)
	assert.Equal(t, call.OpHarvest, res.Call.Op)
}

func TestSubscribeFromHead(t *testing.T) {
	rt, ts := initServer(t, 10)
	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "alice", Time: 0, Amount: "100", Candidate: "baker"})

	conn, _, err := dial(ts, "results", "")
	require.NoError(t, err)
	defer conn.Close()

	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "bob", Time: 1, Amount: "100", Candidate: "baker"})
	res := readResult(t, conn)
	assert.Equal(t, uint64(2), res.Seq)
}

func TestSubscribeInvalid(t *testing.T) {
	rt, ts := initServer(t, 1)
	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "alice", Time: 0, Amount: "100", Candidate: "baker"})
	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "bob", Time: 0, Amount: "100", Candidate: "baker"})

	for _, tt := range []struct {
		name    string
		subject string
		query   string
		status  int
	}{
		{"bad pos", "results", "pos=abc", http.StatusBadRequest},
		{"future pos", "results", "pos=4", http.StatusBadRequest},
		{"backtrace", "results", "pos=1", http.StatusForbidden},
		{"unknown subject", "blocks", "", http.StatusNotFound},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := dial(ts, tt.subject, tt.query)
			assert.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	// within the limit
	conn, _, err := dial(ts, "results", "pos=2")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, uint64(2), readResult(t, conn).Seq)
}

func TestResultReader(t *testing.T) {
	rt, _ := initServer(t, 10)
	r := newResultReader(rt, 1)

	results, ok, err := r.Read()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, results)

	execute(t, rt, &call.Call{Op: call.OpDeposit, Sender: "alice", Time: 0, Amount: "100", Candidate: "baker"})
	execute(t, rt, &call.Call{Op: call.OpHarvest, Sender: "alice", Time: 1})
	results, ok, err = r.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, results, 2)

	_, ok, err = r.Read()
	require.NoError(t, err)
	assert.False(t, ok)
}
