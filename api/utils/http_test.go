// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{nil, http.StatusOK, ""},
		{BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{errors.WithMessage(Forbidden(errors.New("no")), "wrapped"), http.StatusForbidden, "no\n"},
		{NotFound(errors.New("gone")), http.StatusNotFound, "gone\n"},
		{errors.New("boom"), http.StatusInternalServerError, "boom\n"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.status, rec.Code)
		assert.Equal(t, tt.body, rec.Body.String())
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}

func TestParams(t *testing.T) {
	router := mux.NewRouter()
	var (
		addr acre.Address
		id   uint64
		at   uint64
	)
	router.Path("/{id}/{addr}").HandlerFunc(WrapHandlerFunc(func(w http.ResponseWriter, req *http.Request) error {
		var err error
		if id, err = Uint64(req, "id"); err != nil {
			return err
		}
		if addr, err = Address(req, "addr"); err != nil {
			return err
		}
		at, err = QueryUint64(req, "time", 7)
		return err
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/3/alice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, acre.NamedAddress("alice"), addr)
	assert.Equal(t, uint64(7), at)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x/alice", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/1/0x12?time=2", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
