// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/api/events"
	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/runtime"
)

func newServer(t *testing.T, limit uint64) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	rt, err := runtime.New(db, genesis.NewDevnet(), edb, runtime.Options{})
	require.NoError(t, err)

	// four deposits, each a transfer and a vote, then a reverted withdraw
	for i, sender := range []string{"alice", "bob", "carol", "dave"} {
		_, err := rt.Execute(&call.Call{Op: call.OpDeposit, Sender: sender, Time: uint64(i), Amount: "100", Candidate: "baker"})
		require.NoError(t, err)
	}
	_, err = rt.Execute(&call.Call{Op: call.OpWithdraw, Sender: "alice", Time: 10, Amount: "1000"})
	require.NoError(t, err)

	router := mux.NewRouter()
	events.New(edb, limit).Mount(router, "/logs")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string, v any) int {
	res, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(data, v))
	}
	return res.StatusCode
}

func TestFilterCalls(t *testing.T) {
	ts := newServer(t, 5)

	var calls []events.FilteredCall
	require.Equal(t, http.StatusOK, post(t, ts, "/logs/calls", `{}`, &calls))
	assert.Len(t, calls, 5)

	require.Equal(t, http.StatusOK, post(t, ts, "/logs/calls", `{"status":"reverted"}`, &calls))
	require.Len(t, calls, 1)
	assert.Equal(t, uint64(5), calls[0].Seq)
	assert.Equal(t, "insufficient stake", calls[0].Error)

	require.Equal(t, http.StatusOK, post(t, ts, "/logs/calls", `{"sender":"bob"}`, &calls))
	require.Len(t, calls, 1)
	assert.Equal(t, acre.NamedAddress("bob"), calls[0].Sender)

	require.Equal(t, http.StatusOK, post(t, ts, "/logs/calls", `{"range":{"unit":"time","from":1,"to":2},"order":"desc"}`, &calls))
	require.Len(t, calls, 2)
	assert.Equal(t, uint64(3), calls[0].Seq)
	assert.Equal(t, uint64(2), calls[1].Seq)

	require.Equal(t, http.StatusOK, post(t, ts, "/logs/calls", `{"options":{"offset":4,"limit":5}}`, &calls))
	require.Len(t, calls, 1)

	assert.Equal(t, http.StatusForbidden, post(t, ts, "/logs/calls", `{"options":{"limit":6}}`, nil))
	assert.Equal(t, http.StatusBadRequest, post(t, ts, "/logs/calls", `{"range":{"unit":"block"}}`, nil))
	assert.Equal(t, http.StatusBadRequest, post(t, ts, "/logs/calls", `{"range":{"unit":"seq","from":3,"to":2}}`, nil))
	assert.Equal(t, http.StatusBadRequest, post(t, ts, "/logs/calls", `{"sender":"0x1"}`, nil))
}

func TestFilterTransfers(t *testing.T) {
	ts := newServer(t, 5)

	var transfers []events.FilteredTransfer
	require.Equal(t, http.StatusOK, post(t, ts, "/logs/transfers", `{"criteriaSet":[{"from":"alice"},{"from":"dave"}]}`, &transfers))
	require.Len(t, transfers, 2)
	assert.Equal(t, "deposit", transfers[0].Kind)
	assert.Equal(t, "100", transfers[0].Amount)
	assert.Equal(t, acre.NamedAddress("engine"), transfers[0].To)

	require.Equal(t, http.StatusOK, post(t, ts, "/logs/transfers", `{"seq":2}`, &transfers))
	require.Len(t, transfers, 1)
	assert.Equal(t, acre.NamedAddress("bob"), transfers[0].From)

	assert.Equal(t, http.StatusBadRequest, post(t, ts, "/logs/transfers", `{"criteriaSet":[null]}`, nil))
}

func TestFilterVotes(t *testing.T) {
	ts := newServer(t, 5)

	var votes []events.FilteredVote
	require.Equal(t, http.StatusOK, post(t, ts, "/logs/votes", `{"candidate":"baker","order":"desc","options":{"limit":1}}`, &votes))
	require.Len(t, votes, 1)
	assert.Equal(t, "400", votes[0].Weight)
}

func TestTooMany(t *testing.T) {
	ts := newServer(t, 3)

	// four deposit transfers overflow the default page
	assert.Equal(t, http.StatusForbidden, post(t, ts, "/logs/transfers", `{}`, nil))

	var transfers []events.FilteredTransfer
	require.Equal(t, http.StatusOK, post(t, ts, "/logs/transfers", `{"options":{"offset":1,"limit":3}}`, &transfers))
	assert.Len(t, transfers, 3)
}
