// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scenario replays YAML call sequences against a fresh engine and
// renders the results as a readable trace.
package scenario

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/genesis"
)

// Scenario is a genesis, a list of calls and the state expected afterwards.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Genesis defaults to the dev genesis.
	Genesis *genesis.CustomGenesis `yaml:"genesis,omitempty"`
	Steps   []Step                 `yaml:"steps"`

	Balances  []BalanceCheck  `yaml:"balances,omitempty"`
	Positions []PositionCheck `yaml:"positions,omitempty"`
	Weights   []WeightCheck   `yaml:"weights,omitempty"`
}

// Step is a call with an optional expected outcome.
type Step struct {
	call.Call `yaml:",inline"`

	// Expect is the expected status, unchecked when empty.
	Expect string `yaml:"expect,omitempty"`
	// Error is the expected error message of a failed call.
	Error string `yaml:"error,omitempty"`
}

type BalanceCheck struct {
	Owner  string        `yaml:"owner"`
	Asset  genesis.Asset `yaml:"asset"`
	Amount string        `yaml:"amount"`
}

type PositionCheck struct {
	FarmID uint64 `yaml:"farmId"`
	Owner  string `yaml:"owner"`
	Staked string `yaml:"staked"`
}

type WeightCheck struct {
	Candidate string `yaml:"candidate"`
	Weight    string `yaml:"weight"`
}

// Parse decodes a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if s.Name == "" {
		return nil, errors.New("scenario name must be set")
	}
	return &s, nil
}

// Load reads a YAML scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return s, nil
}

func (s *Scenario) genesisConfig() *genesis.CustomGenesis {
	if s.Genesis == nil {
		return genesis.DevConfig()
	}
	return s.Genesis
}
