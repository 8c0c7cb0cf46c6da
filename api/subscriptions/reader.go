// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/runtime"
)

// resultReader hands out the results sequenced since the last read.
type resultReader struct {
	rt   *runtime.Runtime
	next uint64
}

func newResultReader(rt *runtime.Runtime, pos uint64) *resultReader {
	return &resultReader{rt, pos}
}

// Read returns the results from the reader position up to the runtime's
// latest sequence. It reports false when there was nothing new.
func (r *resultReader) Read() ([]*runtime.Result, bool, error) {
	last := r.rt.Seq()
	if r.next > last {
		return nil, false, nil
	}
	var results []*runtime.Result
	for ; r.next <= last; r.next++ {
		res, ok := r.rt.Result(r.next)
		if !ok {
			return nil, false, errors.Errorf("result %d is no longer cached", r.next)
		}
		results = append(results, res)
	}
	return results, true, nil
}
