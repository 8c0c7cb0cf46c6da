// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import "github.com/acreage-labs/acreage/metrics"

var (
	metricCalls     = metrics.LazyLoadCounterVec("farm_calls_count", []string{"op", "status"})
	metricTransfers = metrics.LazyLoadCounterVec("farm_transfers_count", []string{"kind"})
	metricVotes     = metrics.LazyLoadCounter("farm_vote_events_count")
	metricFarms     = metrics.LazyLoadGauge("farm_count")
)
