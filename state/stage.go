// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/kv"
)

type change struct {
	key   []byte
	value rlp.RawValue
}

// Stage abstracts the changes to be committed.
type Stage struct {
	changes []change
	cache   *Cache
}

func newStage(changes map[storageKey]rlp.RawValue, cache *Cache) *Stage {
	sorted := make([]change, 0, len(changes))
	for k, v := range changes {
		sorted = append(sorted, change{k.dbKey(), v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].key, sorted[j].key) < 0
	})
	return &Stage{sorted, cache}
}

// Len returns the count of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest over all changes, in key order.
func (s *Stage) Hash() acre.Bytes32 {
	return acre.Blake2bFn(func(w io.Writer) {
		for _, c := range s.changes {
			w.Write(c.key)
			w.Write(c.value)
		}
	})
}

// Commit writes all changes into putter. Empty values are deleted.
// The shared cache is not touched until Apply.
func (s *Stage) Commit(putter kv.Putter) error {
	for _, c := range s.changes {
		var err error
		if len(c.value) == 0 {
			err = putter.Delete(c.key)
		} else {
			err = putter.Put(c.key, c.value)
		}
		if err != nil {
			return &Error{err}
		}
	}
	return nil
}

// Apply publishes the changes to the shared cache. Call it only after the
// batch given to Commit has been written.
func (s *Stage) Apply() {
	if s.cache == nil {
		return
	}
	for _, c := range s.changes {
		s.cache.Set(c.key, c.value)
	}
}
