// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/kv"
)

const (
	stateBucket = kv.Bucket("s")
	metaBucket  = kv.Bucket("m")
)

var (
	genesisKey = []byte("genesis")
	seqKey     = []byte("seq")
	timeKey    = []byte("time")
)

type meta struct {
	genesisID acre.Bytes32
	seq       uint64
	time      uint64
}

func loadUint64(g kv.Getter, key []byte) (uint64, error) {
	v, err := g.Get(key)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// loadMeta returns nil if the store was never initialized.
func loadMeta(g kv.Getter) (*meta, error) {
	id, err := g.Get(genesisKey)
	if err != nil {
		if g.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	m := &meta{genesisID: acre.BytesToBytes32(id)}
	if m.seq, err = loadUint64(g, seqKey); err != nil {
		return nil, err
	}
	if m.time, err = loadUint64(g, timeKey); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *meta) save(p kv.Putter) error {
	var b [8]byte
	if err := p.Put(genesisKey, m.genesisID.Bytes()); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b[:], m.seq)
	if err := p.Put(seqKey, b[:]); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b[:], m.time)
	return p.Put(timeKey, b[:])
}
