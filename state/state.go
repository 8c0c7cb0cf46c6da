// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/kv"
	"github.com/acreage-labs/acreage/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr acre.Address
	key  acre.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, acre.AddressLength+32)
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State manages contract storage over a kv store.
// Changes are journaled in memory until staged and committed.
type State struct {
	db    kv.Getter
	cache *Cache
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object. cache is optional.
func New(db kv.Getter, cache *Cache) *State {
	s := &State{
		db:    db,
		cache: cache,
	}
	s.sm = stackedmap.New(s.load)
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	dbKey := key.dbKey()
	if s.cache != nil {
		if v, ok := s.cache.Get(dbKey); ok {
			metricStorageRead().AddWithLabel(1, map[string]string{"source": "cache"})
			return v, true, nil
		}
	}

	v, err := s.db.Get(dbKey)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, false, err
		}
		v = nil
	}
	metricStorageRead().AddWithLabel(1, map[string]string{"source": "db"})
	if s.cache != nil {
		s.cache.Set(dbKey, v)
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr acre.Address, key acre.Bytes32) (acre.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return acre.Bytes32{}, err
	}
	if len(raw) == 0 {
		return acre.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return acre.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return acre.Blake2b(raw), nil
	}
	return acre.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr acre.Address, key, value acre.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr acre.Address, key acre.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr acre.Address, key acre.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr acre.Address, key acre.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr acre.Address, key acre.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object holding the latest value of every key changed
// since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return newStage(changes, s.cache)
}
