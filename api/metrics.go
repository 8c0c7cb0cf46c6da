// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
	metricActiveWebsocket = metrics.LazyLoadGaugeVec("api_active_websocket_gauge", []string{"name"})
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the wrapper.
func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := m.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// metricsMiddleware is a middleware that records metrics for each request.
// Requests are labelled by route name, unmatched ones are not recorded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route == nil || route.GetName() == "" {
			next.ServeHTTP(w, r)
			return
		}
		name := route.GetName()

		var subscription string
		if tpl, err := route.GetPathTemplate(); err == nil && tpl == "/subscriptions/{subject}" {
			subscription = mux.Vars(r)["subject"]
		}

		now := time.Now()
		mrw := newMetricsResponseWriter(w)
		if subscription != "" {
			metricActiveWebsocket().AddWithLabel(1, map[string]string{"name": subscription})
		}

		next.ServeHTTP(mrw, r)

		if subscription != "" {
			metricActiveWebsocket().AddWithLabel(-1, map[string]string{"name": subscription})
		} else {
			labels := map[string]string{"name": name, "code": strconv.Itoa(mrw.statusCode), "method": r.Method}
			metricHTTPReqCounter().AddWithLabel(1, labels)
			metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
		}
	})
}
