// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/pborman/uuid"

	"github.com/acreage-labs/acreage/log"
)

const requestIDHeader = "x-request-id"

// RequestLoggerHandler returns a http handler to ensure requests are syphoned into the logger.
// Every request is tagged with an id, echoed back in the x-request-id header.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		// the body can only be read once, put it back for the wrapped handler
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return // don't pass bad request to the next handler
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New()
		}
		w.Header().Set(requestIDHeader, id)

		logger.Info("API Request",
			"id", id,
			"timestamp", time.Now().Unix(),
			"URI", r.URL.String(),
			"Method", r.Method,
			"Body", string(bodyBytes),
		)

		handler.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
