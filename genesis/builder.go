// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/state"
)

// Builder helper to build the genesis state.
type Builder struct {
	timestamp uint64
	config    farm.Config
	admin     acre.Address

	stateProcs []func(state *state.State) error
	calls      []call
}

type call struct {
	fn     func(e *farm.Engine, c farm.Call) (*farm.Receipt, error)
	caller acre.Address
}

// Timestamp set the time genesis calls run at.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Engine set the engine configuration and its first admin.
func (b *Builder) Engine(cfg farm.Config, admin acre.Address) *Builder {
	b.config = cfg
	b.admin = admin
	return b
}

// State add a state process.
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add an engine call made by caller.
func (b *Builder) Call(caller acre.Address, fn func(e *farm.Engine, c farm.Call) (*farm.Receipt, error)) *Builder {
	b.calls = append(b.calls, call{fn, caller})
	return b
}

// ComputeID compute genesis ID. It covers the engine configuration and the
// resulting state.
func (b *Builder) ComputeID() (acre.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return acre.Bytes32{}, err
	}
	defer db.Close()

	st := state.New(db, nil)
	if _, err := b.Build(st); err != nil {
		return acre.Bytes32{}, err
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], b.timestamp)
	stateHash := st.Stage().Hash()
	return acre.Blake2b(
		[]byte(b.config.Variant),
		[]byte(b.config.Rounding.String()),
		b.config.Address.Bytes(),
		b.config.GovernanceAsset.Bytes(),
		ts[:],
		stateHash.Bytes(),
	), nil
}

// Build applies the presets to st and returns the engine bound to it. The
// changes are left uncommitted.
func (b *Builder) Build(st *state.State) (*farm.Engine, error) {
	if !b.config.Variant.Valid() {
		return nil, errors.Errorf("invalid variant %q", b.config.Variant)
	}
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}

	engine := builtin.Farm(b.config, st)
	if err := engine.Initialize(b.admin); err != nil {
		return nil, errors.Wrap(err, "initialize engine")
	}
	for i, c := range b.calls {
		if _, err := c.fn(engine, farm.Call{Sender: c.caller, Now: b.timestamp}); err != nil {
			return nil, errors.Wrapf(err, "genesis call %d", i)
		}
	}
	return engine, nil
}
