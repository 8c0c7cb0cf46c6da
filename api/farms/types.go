// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farms

import (
	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/accumulator"
	"github.com/acreage-labs/acreage/builtin/farm/position"
)

// Farm is the JSON view of a farm. Amounts are decimal strings of whole
// units, rates and fractions are decimals.
type Farm struct {
	ID                 uint64     `json:"id"`
	Staked             acre.Asset `json:"staked"`
	Reward             acre.Asset `json:"reward"`
	RewardPerSecond    string     `json:"rewardPerSecond"`
	AccRewardPerShare  string     `json:"accRewardPerShare"`
	LastUpdateTime     uint64     `json:"lastUpdateTime"`
	TotalStaked        string     `json:"totalStaked"`
	StartTime          uint64     `json:"startTime"`
	EndTime            *uint64    `json:"endTime"`
	Timelock           uint64     `json:"timelock"`
	HarvestFee         string     `json:"harvestFee"`
	WithdrawalFee      string     `json:"withdrawalFee"`
	BurnRewardFraction string     `json:"burnRewardFraction"`
	Paused             bool       `json:"paused"`
	IdleEmission       string     `json:"idleEmission"`
	FeeReserve         string     `json:"feeReserve"`
}

func convertFarm(id uint64, f *accumulator.Farm) *Farm {
	return &Farm{
		ID:                 id,
		Staked:             f.Staked,
		Reward:             f.Reward,
		RewardPerSecond:    acre.FormatScaled(f.RewardPerSecond),
		AccRewardPerShare:  acre.FormatScaled(f.AccRewardPerShare),
		LastUpdateTime:     f.LastUpdateTime,
		TotalStaked:        f.TotalStaked.String(),
		StartTime:          f.StartTime,
		EndTime:            f.EndTime,
		Timelock:           f.Timelock,
		HarvestFee:         acre.FormatScaled(f.HarvestFee),
		WithdrawalFee:      acre.FormatScaled(f.WithdrawalFee),
		BurnRewardFraction: acre.FormatScaled(f.BurnRewardFraction),
		Paused:             f.Paused,
		IdleEmission:       acre.FormatScaled(f.IdleEmission),
		FeeReserve:         f.FeeReserve.String(),
	}
}

// Position is the JSON view of a position with its pending reward.
type Position struct {
	FarmID        uint64       `json:"farmId"`
	Owner         acre.Address `json:"owner"`
	Staked        string       `json:"staked"`
	LastStakeTime uint64       `json:"lastStakeTime"`
	Candidate     acre.Address `json:"candidate"`
	Referrer      acre.Address `json:"referrer"`
	Earned        string       `json:"earned"`
	Pending       string       `json:"pending"`
	PendingAt     uint64       `json:"pendingAt"`
}

func convertPosition(farmID uint64, owner acre.Address, p *position.Position) *Position {
	return &Position{
		FarmID:        farmID,
		Owner:         owner,
		Staked:        p.Staked.String(),
		LastStakeTime: p.LastStakeTime,
		Candidate:     p.Candidate,
		Referrer:      p.Referrer,
		Earned:        p.Earned.String(),
	}
}

type BalanceRequest struct {
	FarmID  uint64 `json:"farmId"`
	Owner   string `json:"owner"`
	TokenID uint64 `json:"tokenId"`
}

type Candidate struct {
	Address acre.Address `json:"address"`
	Weight  string       `json:"weight"`
	Banned  bool         `json:"banned"`
}

type Delegate struct {
	Current acre.Address `json:"current"`
	Next    acre.Address `json:"next"`
}

type Admin struct {
	Admin        acre.Address `json:"admin"`
	PendingAdmin acre.Address `json:"pendingAdmin"`
	Burner       acre.Address `json:"burner"`
}

// Engine describes the engine configuration and progress.
type Engine struct {
	GenesisID       acre.Bytes32 `json:"genesisId"`
	Name            string       `json:"name"`
	Variant         string       `json:"variant"`
	Rounding        string       `json:"rounding"`
	Address         acre.Address `json:"address"`
	GovernanceAsset acre.Asset   `json:"governanceAsset"`
	Seq             uint64       `json:"seq"`
	Time            uint64       `json:"time"`
	FarmCount       uint64       `json:"farmCount"`
}
