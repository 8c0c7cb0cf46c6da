// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.Nil(t, m.GetOrCreateHandler())

	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateGaugeVecMeter("g", []string{"l"}).SetWithLabel(1, map[string]string{"l": "x"})
	m.GetOrCreateHistogramMeter("h", nil).Observe(1)
}

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("test_calls").Add(2)
	Counter("test_calls").Add(3)

	CounterVec("test_ops", []string{"op"}).AddWithLabel(1, map[string]string{"op": "deposit"})
	CounterVec("test_ops", []string{"op"}).AddWithLabel(4, map[string]string{"op": "deposit"})

	gv := GaugeVec("test_staked", []string{"farm"})
	gv.SetWithLabel(10, map[string]string{"farm": "0"})
	gv.AddWithLabel(5, map[string]string{"farm": "0"})

	Gauge("test_seq").Set(7)
	Histogram("test_latency", BucketCallDuration).Observe(3)

	families := gather(t)

	assert.Equal(t, float64(5), families["acreage_test_calls"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, float64(5), families["acreage_test_ops"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, float64(15), families["acreage_test_staked"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, float64(7), families["acreage_test_seq"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(1), families["acreage_test_latency"].GetMetric()[0].GetHistogram().GetSampleCount())

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "acreage_test_calls 5")
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}
