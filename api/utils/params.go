// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
)

// Address reads an address path variable, 0x hex or a name.
func Address(req *http.Request, name string) (acre.Address, error) {
	addr, err := acre.ResolveAddress(mux.Vars(req)[name])
	if err != nil {
		return acre.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64 reads an unsigned path variable.
func Uint64(req *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// QueryUint64 reads an optional unsigned query parameter.
func QueryUint64(req *http.Request, name string, def uint64) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}
