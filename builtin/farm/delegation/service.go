// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation tracks the stake weight delegated to each candidate
// across all farms of an engine, and the pool delegate that weight elects.
package delegation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/storage"
)

var (
	slotWeights    = storage.Slot("candidate-weights")
	slotKnown      = storage.Slot("candidate-known")
	slotCandidates = storage.Slot("candidates")
	slotBanned     = storage.Slot("candidate-banned")
	slotDelegate   = storage.Slot("delegate")
)

// VoteEvent reports the engine's new total weight for a candidate.
type VoteEvent struct {
	Candidate acre.Address `json:"candidate"`
	Weight    *big.Int     `json:"weight"`
}

type Service struct {
	weights    *storage.Mapping[acre.Address, *big.Int]
	known      *storage.Mapping[acre.Address, bool]
	candidates *storage.Raw[[]acre.Address]
	banned     *storage.Mapping[acre.Address, bool]
	delegate   *storage.Raw[acre.Address]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		weights:    storage.NewMapping[acre.Address, *big.Int](sctx, slotWeights),
		known:      storage.NewMapping[acre.Address, bool](sctx, slotKnown),
		candidates: storage.NewRaw[[]acre.Address](sctx, slotCandidates),
		banned:     storage.NewMapping[acre.Address, bool](sctx, slotBanned),
		delegate:   storage.NewRaw[acre.Address](sctx, slotDelegate),
	}
}

// Weight returns the total stake delegated to candidate.
func (s *Service) Weight(candidate acre.Address) (*big.Int, error) {
	w, err := s.weights.Get(candidate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get candidate weight")
	}
	if w == nil {
		return new(big.Int), nil
	}
	return w, nil
}

// Add increases the candidate's weight. It returns nil when amount is zero.
func (s *Service) Add(candidate acre.Address, amount *big.Int) (*VoteEvent, error) {
	if amount.Sign() == 0 || candidate.IsZero() {
		return nil, nil
	}
	w, err := s.Weight(candidate)
	if err != nil {
		return nil, err
	}
	if err := s.remember(candidate); err != nil {
		return nil, err
	}
	return s.set(candidate, new(big.Int).Add(w, amount))
}

// Sub decreases the candidate's weight. It returns nil when amount is zero.
func (s *Service) Sub(candidate acre.Address, amount *big.Int) (*VoteEvent, error) {
	if amount.Sign() == 0 || candidate.IsZero() {
		return nil, nil
	}
	w, err := s.Weight(candidate)
	if err != nil {
		return nil, err
	}
	if w.Cmp(amount) < 0 {
		return nil, errors.Errorf("candidate %v weight %v below %v", candidate, w, amount)
	}
	return s.set(candidate, new(big.Int).Sub(w, amount))
}

func (s *Service) set(candidate acre.Address, weight *big.Int) (*VoteEvent, error) {
	if err := s.weights.Set(candidate, weight); err != nil {
		return nil, errors.Wrap(err, "failed to set candidate weight")
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return &VoteEvent{Candidate: candidate, Weight: new(big.Int).Set(weight)}, nil
}

func (s *Service) remember(candidate acre.Address) error {
	known, err := s.known.Get(candidate)
	if err != nil {
		return errors.Wrap(err, "failed to get candidate")
	}
	if known {
		return nil
	}
	list, err := s.candidates.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get candidates")
	}
	if err := s.candidates.Set(append(list, candidate)); err != nil {
		return errors.Wrap(err, "failed to set candidates")
	}
	return s.known.Set(candidate, true)
}

func (s *Service) IsBanned(candidate acre.Address) (bool, error) {
	banned, err := s.banned.Get(candidate)
	if err != nil {
		return false, errors.Wrap(err, "failed to get ban")
	}
	return banned, nil
}

// SetBanned bans or unbans a candidate. Existing weight is kept, but a banned
// candidate is never elected.
func (s *Service) SetBanned(candidate acre.Address, banned bool) error {
	if banned {
		if err := s.banned.Set(candidate, true); err != nil {
			return errors.Wrap(err, "failed to set ban")
		}
	} else {
		s.banned.Delete(candidate)
	}
	return s.refresh()
}

// Delegate returns the elected candidate and the runner-up. Either may be
// zero when there are not enough eligible candidates.
func (s *Service) Delegate() (current, next acre.Address, err error) {
	stored, err := s.delegate.Get()
	if err != nil {
		return acre.Address{}, acre.Address{}, errors.Wrap(err, "failed to get delegate")
	}
	list, err := s.candidates.Get()
	if err != nil {
		return acre.Address{}, acre.Address{}, errors.Wrap(err, "failed to get candidates")
	}

	var bestW, nextW *big.Int
	for _, c := range list {
		banned, err := s.IsBanned(c)
		if err != nil {
			return acre.Address{}, acre.Address{}, err
		}
		if banned {
			continue
		}
		w, err := s.Weight(c)
		if err != nil {
			return acre.Address{}, acre.Address{}, err
		}
		if w.Sign() == 0 {
			continue
		}
		switch {
		case bestW == nil, w.Cmp(bestW) > 0, w.Cmp(bestW) == 0 && c == stored:
			next, nextW = current, bestW
			current, bestW = c, w
		case nextW == nil || w.Cmp(nextW) > 0:
			next, nextW = c, w
		}
	}
	return current, next, nil
}

func (s *Service) refresh() error {
	current, _, err := s.Delegate()
	if err != nil {
		return err
	}
	if err := s.delegate.Set(current); err != nil {
		return errors.Wrap(err, "failed to set delegate")
	}
	return nil
}
