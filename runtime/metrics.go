// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/acreage-labs/acreage/metrics"

var (
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"status"}, metrics.BucketCallDuration)
	metricSeq          = metrics.LazyLoadGauge("runtime_seq")
	metricReceiptCache = metrics.LazyLoadGaugeVec("runtime_receipt_cache", []string{"event"})
)
