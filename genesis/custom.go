// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/state"
)

// CustomGenesis is a user supplied genesis. Addresses are either 0x prefixed
// hex or names, which map to acre.NamedAddress. Amounts are decimal strings
// of whole units; rates and fractions are decimals.
type CustomGenesis struct {
	Name            string         `yaml:"name"`
	Variant         farm.Variant   `yaml:"variant"`
	Rounding        *acre.Rounding `yaml:"rounding"`
	LaunchTime      uint64         `yaml:"launchTime"`
	Admin           string         `yaml:"admin"`
	Engine          string         `yaml:"engine"`
	Burner          string         `yaml:"burner"`
	GovernanceAsset *Asset         `yaml:"governanceAsset"`
	Balances        []Balance      `yaml:"balances"`
	Farms           []Farm         `yaml:"farms"`
}

// Asset names a token contract and token id.
type Asset struct {
	Contract string `json:"contract,omitempty" yaml:"contract"`
	TokenID  uint64 `json:"tokenId,omitempty" yaml:"tokenId"`
}

// Resolve maps the contract name to its address.
func (a *Asset) Resolve() (acre.Asset, error) {
	if a == nil {
		return acre.Asset{}, errors.New("asset must be set")
	}
	contract, err := acre.ResolveAddress(a.Contract)
	if err != nil {
		return acre.Asset{}, errors.Wrap(err, "asset contract")
	}
	return acre.Asset{Contract: contract, TokenID: a.TokenID}, nil
}

type Balance struct {
	Owner  string `yaml:"owner"`
	Asset  Asset  `yaml:"asset"`
	Amount string `yaml:"amount"`
}

// Farm configures a farm in the units of CustomGenesis.
type Farm struct {
	Staked             Asset   `json:"staked,omitempty" yaml:"staked"`
	Reward             *Asset  `json:"reward,omitempty" yaml:"reward"`
	RewardPerSecond    string  `json:"rewardPerSecond,omitempty" yaml:"rewardPerSecond"`
	StartTime          uint64  `json:"startTime,omitempty" yaml:"startTime"`
	EndTime            *uint64 `json:"endTime,omitempty" yaml:"endTime"`
	Timelock           uint64  `json:"timelock,omitempty" yaml:"timelock"`
	HarvestFee         string  `json:"harvestFee,omitempty" yaml:"harvestFee"`
	WithdrawalFee      string  `json:"withdrawalFee,omitempty" yaml:"withdrawalFee"`
	BurnRewardFraction string  `json:"burnRewardFraction,omitempty" yaml:"burnRewardFraction"`
}

// Params converts f into engine parameters.
func (f *Farm) Params() (farm.FarmParams, error) {
	var (
		p   farm.FarmParams
		err error
	)
	if p.Staked, err = f.Staked.Resolve(); err != nil {
		return p, errors.WithMessage(err, "staked")
	}
	if f.Reward != nil {
		if p.Reward, err = f.Reward.Resolve(); err != nil {
			return p, errors.WithMessage(err, "reward")
		}
	}
	if f.RewardPerSecond != "" {
		if p.RewardPerSecond, err = acre.ParseScaled(f.RewardPerSecond); err != nil {
			return p, errors.WithMessage(err, "rewardPerSecond")
		}
	}
	for _, fr := range []struct {
		name string
		text string
		dst  **big.Int
	}{
		{"harvestFee", f.HarvestFee, &p.HarvestFee},
		{"withdrawalFee", f.WithdrawalFee, &p.WithdrawalFee},
		{"burnRewardFraction", f.BurnRewardFraction, &p.BurnRewardFraction},
	} {
		if fr.text == "" {
			continue
		}
		if *fr.dst, err = acre.ParseFraction(fr.text); err != nil {
			return p, errors.WithMessage(err, fr.name)
		}
	}
	p.StartTime = f.StartTime
	p.EndTime = f.EndTime
	p.Timelock = f.Timelock
	return p, nil
}

// Parse decodes a YAML custom genesis.
func Parse(data []byte) (*CustomGenesis, error) {
	var gen CustomGenesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// Load reads a YAML custom genesis file.
func Load(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// NewCustom create a genesis from a custom config.
func NewCustom(gen *CustomGenesis) (*Genesis, error) {
	if !gen.Variant.Valid() {
		return nil, errors.Errorf("variant must be %q or %q", farm.VariantQ, farm.VariantT)
	}
	admin, err := acre.ResolveAddress(gen.Admin)
	if err != nil {
		return nil, errors.Wrap(err, "admin")
	}
	engineName := gen.Engine
	if engineName == "" {
		engineName = "engine"
	}
	engine, err := acre.ResolveAddress(engineName)
	if err != nil {
		return nil, errors.Wrap(err, "engine")
	}

	cfg := farm.Config{
		Variant:  gen.Variant,
		Address:  engine,
		Rounding: gen.Variant.DefaultRounding(),
	}
	if gen.Rounding != nil {
		cfg.Rounding = *gen.Rounding
	}
	if gen.Variant == farm.VariantQ {
		if cfg.GovernanceAsset, err = gen.GovernanceAsset.Resolve(); err != nil {
			return nil, errors.WithMessage(err, "governanceAsset")
		}
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		Engine(cfg, admin)

	type mint struct {
		asset  acre.Asset
		owner  acre.Address
		amount *big.Int
	}
	mints := make([]mint, 0, len(gen.Balances))
	for i, b := range gen.Balances {
		owner, err := acre.ResolveAddress(b.Owner)
		if err != nil {
			return nil, errors.Wrapf(err, "balance %d: owner", i)
		}
		asset, err := b.Asset.Resolve()
		if err != nil {
			return nil, errors.WithMessagef(err, "balance %d", i)
		}
		amount, err := acre.ParseAmount(b.Amount)
		if err != nil {
			return nil, errors.WithMessagef(err, "balance %d", i)
		}
		if amount.Sign() < 1 {
			return nil, errors.Errorf("balance %d: amount must be a non-zero integer", i)
		}
		mints = append(mints, mint{asset, owner, amount})
	}
	builder.State(func(st *state.State) error {
		tokens := builtin.Token.WithState(st)
		for _, m := range mints {
			if err := tokens.Mint(m.asset, m.owner, m.amount); err != nil {
				return err
			}
		}
		return nil
	})

	if gen.Burner != "" {
		burner, err := acre.ResolveAddress(gen.Burner)
		if err != nil {
			return nil, errors.Wrap(err, "burner")
		}
		builder.Call(admin, func(e *farm.Engine, c farm.Call) (*farm.Receipt, error) {
			return e.SetBurner(c, burner)
		})
	}
	for i := range gen.Farms {
		params, err := gen.Farms[i].Params()
		if err != nil {
			return nil, errors.WithMessagef(err, "farm %d", i)
		}
		builder.Call(admin, func(e *farm.Engine, c farm.Call) (*farm.Receipt, error) {
			return e.AddNewFarm(c, params)
		})
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	name := gen.Name
	if name == "" {
		name = "customnet"
	}
	return &Genesis{builder, id, name}, nil
}
