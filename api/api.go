// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/acreage-labs/acreage/api/calls"
	"github.com/acreage-labs/acreage/api/events"
	"github.com/acreage-labs/acreage/api/farms"
	"github.com/acreage-labs/acreage/api/subscriptions"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	BacktraceLimit  uint64
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
	LogsLimit       uint64
}

// New return api router
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	farms.New(rt).
		Mount(router, "")
	calls.New(rt).
		Mount(router, "/calls")
	if rt.Events() != nil {
		events.New(rt.Events(), opts.LogsLimit).
			Mount(router, "/logs")
	}
	subs := subscriptions.New(rt, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	genesisID := rt.Genesis().ID().String()
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("x-genesis-id", genesisID)
		router.ServeHTTP(w, req)
	})
	handler = handlers.CompressHandler(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id", requestIDHeader}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
