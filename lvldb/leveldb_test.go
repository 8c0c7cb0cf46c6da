// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	disk, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer disk.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{disk, mem} {
		assert.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestBatchAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	for _, k := range []string{"a1", "a2", "b1"} {
		require.NoError(t, batch.Put([]byte(k), []byte("v-"+k)))
	}
	assert.Equal(t, 3, batch.Len())

	// nothing visible before write
	_, err = db.Get([]byte("a1"))
	assert.True(t, db.IsNotFound(err))
	require.NoError(t, batch.Write())

	iter := db.Iterate(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}

func TestBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	foo := kv.Bucket("foo").NewStore(db)
	bar := kv.Bucket("bar").NewStore(db)

	require.NoError(t, foo.Put([]byte("k"), []byte("1")))
	require.NoError(t, bar.Put([]byte("k"), []byte("2")))

	v, err := foo.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	raw, err := db.Get([]byte("bark"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), raw)

	batch := foo.NewBatch()
	require.NoError(t, batch.Put([]byte("j"), []byte("0")))
	require.NoError(t, batch.Write())

	iter := foo.Iterate(kv.Range{})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.Equal(t, []string{"j", "k"}, keys)
}
