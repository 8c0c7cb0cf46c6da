// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"fmt"
	"time"
)

// Retry calls fn every retryPeriod until it succeeds or maxWaitTime has passed.
func Retry(fn func() error, retryPeriod, maxWaitTime time.Duration) error {
	startTime := time.Now()
	for {
		err := fn()
		if err == nil {
			return nil
		}

		if time.Since(startTime) > maxWaitTime {
			return fmt.Errorf("retry timeout, latest err: %w", err)
		}

		time.Sleep(retryPeriod)
	}
}
