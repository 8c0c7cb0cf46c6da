// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/builtin/storage"
)

var (
	slotFarms     = storage.Slot("farms")
	slotFarmCount = storage.Slot("farm-count")
)

type Service struct {
	farms *storage.Mapping[storage.Uint64Key, *Farm]
	count *storage.Uint256
}

func New(sctx *storage.Context) *Service {
	return &Service{
		farms: storage.NewMapping[storage.Uint64Key, *Farm](sctx, slotFarms),
		count: storage.NewUint256(sctx, slotFarmCount),
	}
}

// Count returns the number of farms. Farm ids are 0..Count-1.
func (s *Service) Count() (uint64, error) {
	n, err := s.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get farm count")
	}
	return n.Uint64(), nil
}

// GetFarm returns the farm, or ErrUnknownFarm.
func (s *Service) GetFarm(id uint64) (*Farm, error) {
	n, err := s.Count()
	if err != nil {
		return nil, err
	}
	if id >= n {
		return nil, errors.WithMessagef(reverts.ErrUnknownFarm, "farm %d", id)
	}
	f, err := s.farms.Get(storage.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get farm")
	}
	f.normalize()
	return f, nil
}

func (s *Service) SetFarm(id uint64, f *Farm) error {
	if err := s.farms.Set(storage.Uint64Key(id), f); err != nil {
		return errors.Wrap(err, "failed to set farm")
	}
	return nil
}

// Add appends a farm and returns its id.
func (s *Service) Add(f *Farm) (uint64, error) {
	id, err := s.Count()
	if err != nil {
		return 0, err
	}
	f.normalize()
	if err := s.SetFarm(id, f); err != nil {
		return 0, err
	}
	if err := s.count.Add(big.NewInt(1)); err != nil {
		return 0, errors.Wrap(err, "failed to increase farm count")
	}
	return id, nil
}
