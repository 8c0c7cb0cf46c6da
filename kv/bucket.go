// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(buf *buf, key []byte) []byte {
	buf.k = append(append(buf.k[:0], b...), key...)
	return buf.k
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Get(b.key(buf, key))
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Has(b.key(buf, key))
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Put(b.key(buf, key), val)
		},
		func(key []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Delete(b.key(buf, key))
		},
	}
}

// NewBatch creates a bucket batch writing into the source batch.
func (b Bucket) NewBatch(src Batch) Batch {
	return &struct {
		Putter
		LenFunc
		WriteFunc
	}{
		b.NewPutter(src),
		src.Len,
		src.Write,
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		NewBatchFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Batch {
			return b.NewBatch(src.NewBatch())
		},
		func(r Range) Iterator {
			// the prefixed keys must not share the pooled buffer, the iterator keeps them
			r.Start = append([]byte(b), r.Start...)
			if len(r.Limit) == 0 {
				r.Limit = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.Limit = append([]byte(b), r.Limit...)
			}
			iter := src.Iterate(r)
			return &struct {
				NextFunc
				ReleaseFunc
				ErrorFunc
				KeyFunc
				ValueFunc
			}{
				iter.Next,
				iter.Release,
				iter.Error,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
			}
		},
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
