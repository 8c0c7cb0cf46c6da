// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/acreage-labs/acreage/metrics"
)

var (
	metricQueryCounter = metrics.LazyLoadCounterVec("eventdb_query_count", []string{"type", "order"})
	metricOffsetBucket = metrics.LazyLoadHistogramVec("eventdb_query_offset_bucket", []string{"type"}, []int64{
		0, 1_000, 5_000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000, 1_000_000,
	})
	metricLimitBucket = metrics.LazyLoadHistogramVec("eventdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricRowsWritten = metrics.LazyLoadCounterVec("eventdb_rows_written", []string{"table"})
)

func metricsHandleQuery(queryType string, options *Options, order Order) {
	if metrics.NoOp() {
		return
	}

	o := "asc"
	if order == DESC {
		o = "desc"
	}
	metricQueryCounter().AddWithLabel(1, map[string]string{"type": queryType, "order": o})

	if options == nil {
		return
	}
	offset := min(options.Offset, 1_000_001)
	metricOffsetBucket().ObserveWithLabels(int64(offset), map[string]string{"type": queryType})

	limit := min(options.Limit, 1001)
	metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": queryType})
}
