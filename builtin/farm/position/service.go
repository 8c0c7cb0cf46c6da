// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/storage"
)

var slotPositions = storage.Slot("positions")

type Service struct {
	positions *storage.Mapping[storage.PairKey, *Position]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		positions: storage.NewMapping[storage.PairKey, *Position](sctx, slotPositions),
	}
}

func key(farmID uint64, user acre.Address) storage.PairKey {
	return storage.Pair(storage.Uint64Key(farmID), user)
}

// GetPosition returns the position, or an empty one if the user never staked.
func (s *Service) GetPosition(farmID uint64, user acre.Address) (*Position, error) {
	p, err := s.positions.Get(key(farmID, user))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	p.normalize()
	return p, nil
}

func (s *Service) SetPosition(farmID uint64, user acre.Address, p *Position) error {
	if err := s.positions.Set(key(farmID, user), p); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}
