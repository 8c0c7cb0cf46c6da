// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap is a map with revisions. Each Push opens a new level,
// Pop discards every put of the top level. It's the journal behind state
// checkpoints.
package stackedmap

// MapGetter defines getter method of the source map.
type MapGetter[K comparable, V any] func(key K) (value V, exist bool, err error)

type entry[K comparable, V any] struct {
	key   K
	value V
}

type level[K comparable, V any] struct {
	kvs     map[K]V
	journal []entry[K, V]
}

// StackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save/revert feature.
type StackedMap[K comparable, V any] struct {
	src    MapGetter[K, V]
	levels []*level[K, V]
	// key => stack of levels which contain the key, for fast lookup
	keyRevisions map[K][]int
}

// New create an instance of StackedMap.
// src acts as source of data.
func New[K comparable, V any](src MapGetter[K, V]) *StackedMap[K, V] {
	sm := &StackedMap[K, V]{
		src:          src,
		keyRevisions: make(map[K][]int),
	}
	sm.Push()
	return sm
}

// Depth returns depth of stack.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.levels)
}

// Push pushes a new map on stack.
// It returns stack depth before push.
func (sm *StackedMap[K, V]) Push() int {
	sm.levels = append(sm.levels, &level[K, V]{kvs: make(map[K]V)})
	return len(sm.levels) - 1
}

// Pop pop the map at top of stack.
// It will revert all Put operations since last Push.
func (sm *StackedMap[K, V]) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.keyRevisions[key]
		if len(revs) <= 1 {
			delete(sm.keyRevisions, key)
		} else {
			sm.keyRevisions[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pop maps until stack depth reaches depth.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get gets value for given key.
// The second return value indicates whether the given key is found.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.keyRevisions[key]; ok {
		if v, ok := sm.levels[revs[len(revs)-1]].kvs[key]; ok {
			return v, true, nil
		}
	}
	return sm.src(key)
}

// Put puts key value into map at stack top.
// It will panic if stack is empty.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	rev := len(sm.levels) - 1
	top := sm.levels[rev]

	if _, ok := top.kvs[key]; !ok {
		sm.keyRevisions[key] = append(sm.keyRevisions[key], rev)
	}
	top.kvs[key] = value
	top.journal = append(top.journal, entry[K, V]{key, value})
}

// Journal traverses journal entries of all Put operations, in order.
// The traversal stops when cb returns false.
func (sm *StackedMap[K, V]) Journal(cb func(key K, value V) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.key, e.value) {
				return
			}
		}
	}
}
