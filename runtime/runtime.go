// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime sequences calls onto the engine. Each call runs against a
// fresh state over the store and is committed atomically with the sequence
// counter, or not at all.
package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/cache"
	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/co"
	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/kv"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/state"
)

var logger = log.WithContext("pkg", "runtime")

// ErrGenesisMismatch is returned when the store was initialized with another genesis.
var ErrGenesisMismatch = errors.New("genesis mismatch")

// Options tunes the runtime caches.
type Options struct {
	// ReceiptCacheSize is the number of recent results kept in memory.
	ReceiptCacheSize int
	// StateCacheSize is the state blob cache size in bytes, 0 disables it.
	StateCacheSize int
}

// Runtime executes calls one at a time.
type Runtime struct {
	mu sync.RWMutex

	db         kv.Store
	stateStore kv.Store
	cache      *state.Cache
	events     *eventdb.EventDB
	genesis    *genesis.Genesis
	meta       meta

	results *cache.LRU[uint64, *Result]
	signal  co.Signal
}

// New opens the runtime over db, writing the genesis state on first use.
// events may be nil.
func New(db kv.Store, gen *genesis.Genesis, events *eventdb.EventDB, opts Options) (*Runtime, error) {
	if opts.ReceiptCacheSize <= 0 {
		opts.ReceiptCacheSize = 1024
	}
	results, err := cache.NewLRU[uint64, *Result](opts.ReceiptCacheSize)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		db:         db,
		stateStore: stateBucket.NewStore(db),
		events:     events,
		genesis:    gen,
		results:    results,
	}
	if opts.StateCacheSize > 0 {
		rt.cache = state.NewCache(opts.StateCacheSize)
	}

	m, err := loadMeta(metaBucket.NewGetter(db))
	if err != nil {
		return nil, errors.Wrap(err, "load meta")
	}
	if m == nil {
		if err := rt.initGenesis(); err != nil {
			return nil, errors.Wrap(err, "init genesis")
		}
		return rt, nil
	}
	if m.genesisID != gen.ID() {
		return nil, errors.WithMessagef(ErrGenesisMismatch, "stored %v, want %v", m.genesisID, gen.ID())
	}
	rt.meta = *m
	metricSeq().Set(int64(m.seq))
	logger.Info("runtime resumed", "genesis", gen.Name(), "seq", m.seq, "time", m.time)
	return rt, nil
}

func (rt *Runtime) initGenesis() error {
	st := state.New(rt.stateStore, rt.cache)
	if _, err := rt.genesis.Build(st); err != nil {
		return err
	}
	m := meta{genesisID: rt.genesis.ID(), time: rt.genesis.LaunchTime()}

	stage := st.Stage()
	batch := rt.db.NewBatch()
	if err := stage.Commit(stateBucket.NewPutter(batch)); err != nil {
		return err
	}
	if err := m.save(metaBucket.NewPutter(batch)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	stage.Apply()
	rt.meta = m
	logger.Info("genesis initialized", "name", rt.genesis.Name(), "id", rt.meta.genesisID)
	return nil
}

func (rt *Runtime) Genesis() *genesis.Genesis { return rt.genesis }
func (rt *Runtime) Events() *eventdb.EventDB  { return rt.events }

// Seq returns the number of the last executed call.
func (rt *Runtime) Seq() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.meta.seq
}

// Time returns the time of the last executed call.
func (rt *Runtime) Time() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.meta.time
}

// ViewState runs fn against the committed state. Changes fn makes are dropped.
func (rt *Runtime) ViewState(fn func(st *state.State) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(state.New(rt.stateStore, rt.cache))
}

// View runs fn against the engine over the committed state.
func (rt *Runtime) View(fn func(e *farm.Engine) error) error {
	return rt.ViewState(func(st *state.State) error {
		return fn(builtin.Farm(rt.genesis.EngineConfig(), st))
	})
}

// Execute sequences c and runs it. Calls that fail inside the engine are
// sequenced and reported in the result. Calls that cannot be decoded, or
// whose time is before the last call, return an error wrapping
// call.ErrInvalidCall and are not sequenced.
func (rt *Runtime) Execute(c *call.Call) (*Result, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if c.Time < rt.meta.time {
		return nil, errors.WithMessagef(call.ErrInvalidCall, "time %d is before %d", c.Time, rt.meta.time)
	}

	start := time.Now()
	st := state.New(rt.stateStore, rt.cache)
	receipt, err := call.Dispatch(builtin.Farm(rt.genesis.EngineConfig(), st), c)
	if errors.Is(err, call.ErrInvalidCall) {
		return nil, err
	}
	var stateErr *state.Error
	if errors.As(err, &stateErr) {
		return nil, err
	}

	next := rt.meta
	next.seq++
	next.time = c.Time
	result := &Result{Seq: next.seq, Call: c, Status: statusOf(err), Receipt: receipt}
	if err != nil {
		result.Error = err.Error()
	}

	var stage *state.Stage
	batch := rt.db.NewBatch()
	if err == nil {
		stage = st.Stage()
		if err := stage.Commit(stateBucket.NewPutter(batch)); err != nil {
			return nil, err
		}
	}
	if err := next.save(metaBucket.NewPutter(batch)); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	if stage != nil {
		stage.Apply()
	}
	rt.meta = next

	if rt.events != nil {
		if err := rt.writeEvents(result); err != nil {
			logger.Warn("failed to write events", "seq", result.Seq, "err", err)
		}
	}
	rt.results.Add(result.Seq, result)
	rt.signal.Broadcast()

	metricSeq().Set(int64(result.Seq))
	metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"status": result.Status})
	logger.Debug("executed", "seq", result.Seq, "op", c.Op, "status", result.Status)
	return result, nil
}

func (rt *Runtime) writeEvents(r *Result) error {
	sender, _ := acre.ResolveAddress(r.Call.Sender)
	batch := rt.events.Prepare(r.Seq, r.Call.Time, sender, string(r.Call.Op))
	if !r.OK() {
		batch.Fail(r.Status, errors.New(r.Error))
	} else {
		for _, tr := range r.Receipt.Transfers {
			batch.Transfer(tr.FarmID, string(tr.Kind), tr.Asset, tr.From, tr.To, tr.Amount)
		}
		for _, v := range r.Receipt.Votes {
			batch.Vote(v.Candidate, v.Weight)
		}
	}
	return batch.Commit()
}

// Result returns a recent result by sequence number.
func (rt *Runtime) Result(seq uint64) (*Result, bool) {
	r, ok := rt.results.Get(seq)
	if ok {
		if changed, h, m := rt.results.Stats(); changed {
			metricReceiptCache().SetWithLabel(h, map[string]string{"event": "hit"})
			metricReceiptCache().SetWithLabel(m, map[string]string{"event": "miss"})
		}
	}
	return r, ok
}

// NewWaiter returns a waiter fired after each executed call.
func (rt *Runtime) NewWaiter() co.Waiter {
	return rt.signal.NewWaiter()
}
