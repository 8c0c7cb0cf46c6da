// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/builtin/storage"
)

var (
	slotAdmin        = storage.Slot("admin")
	slotPendingAdmin = storage.Slot("pending-admin")
	slotBurner       = storage.Slot("burner")
	slotOperators    = storage.Slot("operators")
)

// Service keeps the engine's privileged identities.
type Service struct {
	admin        *storage.Raw[acre.Address]
	pendingAdmin *storage.Raw[acre.Address]
	burner       *storage.Raw[acre.Address]
	operators    *storage.Mapping[storage.PairKey, bool]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		admin:        storage.NewRaw[acre.Address](sctx, slotAdmin),
		pendingAdmin: storage.NewRaw[acre.Address](sctx, slotPendingAdmin),
		burner:       storage.NewRaw[acre.Address](sctx, slotBurner),
		operators:    storage.NewMapping[storage.PairKey, bool](sctx, slotOperators),
	}
}

func (s *Service) Admin() (acre.Address, error) {
	a, err := s.admin.Get()
	if err != nil {
		return acre.Address{}, errors.Wrap(err, "failed to get admin")
	}
	return a, nil
}

func (s *Service) SetAdmin(a acre.Address) error {
	return s.admin.Set(a)
}

// CheckAdmin fails with ErrNotAdmin unless sender is the admin.
func (s *Service) CheckAdmin(sender acre.Address) error {
	a, err := s.Admin()
	if err != nil {
		return err
	}
	if a.IsZero() || a != sender {
		return reverts.ErrNotAdmin
	}
	return nil
}

func (s *Service) PendingAdmin() (acre.Address, error) {
	a, err := s.pendingAdmin.Get()
	if err != nil {
		return acre.Address{}, errors.Wrap(err, "failed to get pending admin")
	}
	return a, nil
}

// Propose stores candidate as the pending admin.
func (s *Service) Propose(candidate acre.Address) error {
	return s.pendingAdmin.Set(candidate)
}

// Confirm promotes the pending admin, which must be sender.
func (s *Service) Confirm(sender acre.Address) error {
	pending, err := s.PendingAdmin()
	if err != nil {
		return err
	}
	if pending.IsZero() || pending != sender {
		return reverts.ErrNotPendingAdmin
	}
	if err := s.admin.Set(pending); err != nil {
		return err
	}
	return s.pendingAdmin.Set(acre.Address{})
}

// Burner returns the burn sink, acre.BurnAddress unless overridden.
func (s *Service) Burner() (acre.Address, error) {
	b, err := s.burner.Get()
	if err != nil {
		return acre.Address{}, errors.Wrap(err, "failed to get burner")
	}
	if b.IsZero() {
		return acre.BurnAddress, nil
	}
	return b, nil
}

func (s *Service) SetBurner(b acre.Address) error {
	return s.burner.Set(b)
}

func (s *Service) IsOperator(owner, operator acre.Address) (bool, error) {
	ok, err := s.operators.Get(storage.Pair(owner, operator))
	if err != nil {
		return false, errors.Wrap(err, "failed to get operator")
	}
	return ok, nil
}

func (s *Service) SetOperator(owner, operator acre.Address, enabled bool) error {
	if !enabled {
		s.operators.Delete(storage.Pair(owner, operator))
		return nil
	}
	return s.operators.Set(storage.Pair(owner, operator), true)
}
