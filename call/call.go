// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package call defines the wire form of engine calls, shared by the HTTP API
// and scenario files, and dispatches them onto an engine.
package call

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/genesis"
)

// ErrInvalidCall is returned for calls that cannot be decoded into engine
// arguments. Such calls never reach the engine.
var ErrInvalidCall = errors.New("invalid call")

// Op names an engine entrypoint.
type Op string

const (
	OpDeposit            Op = "deposit"
	OpWithdraw           Op = "withdraw"
	OpHarvest            Op = "harvest"
	OpTransfer           Op = "transfer"
	OpAddNewFarm         Op = "add_new_farm"
	OpSetRewardPerSecond Op = "set_reward_per_second"
	OpSetFees            Op = "set_fees"
	OpPauseFarms         Op = "pause_farms"
	OpBurnFarmRewards    Op = "burn_farm_rewards"
	OpClaimFarmRewards   Op = "claim_farm_rewards"
	OpWithdrawFarmDepo   Op = "withdraw_farm_depo"
	OpSetAdmin           Op = "set_admin"
	OpConfirmAdmin       Op = "confirm_admin"
	OpSetBurner          Op = "set_burner"
	OpBanCandidates      Op = "ban_candidates"
	OpUpdateOperators    Op = "update_operators"
)

// Ops lists every entrypoint.
var Ops = []Op{
	OpDeposit,
	OpWithdraw,
	OpHarvest,
	OpTransfer,
	OpAddNewFarm,
	OpSetRewardPerSecond,
	OpSetFees,
	OpPauseFarms,
	OpBurnFarmRewards,
	OpClaimFarmRewards,
	OpWithdrawFarmDepo,
	OpSetAdmin,
	OpConfirmAdmin,
	OpSetBurner,
	OpBanCandidates,
	OpUpdateOperators,
}

// Call is an engine call in wire form. Addresses are 0x hex or names, amounts
// are decimal strings of whole units, rates and fractions are decimals. Only
// the fields of Op are read.
type Call struct {
	Op     Op     `json:"op" yaml:"op"`
	Sender string `json:"sender" yaml:"sender"`
	Time   uint64 `json:"time" yaml:"time"`

	FarmID    uint64 `json:"farmId,omitempty" yaml:"farmId"`
	Amount    string `json:"amount,omitempty" yaml:"amount"`
	Candidate string `json:"candidate,omitempty" yaml:"candidate"`
	Referrer  string `json:"referrer,omitempty" yaml:"referrer"`
	Receiver  string `json:"receiver,omitempty" yaml:"receiver"`
	// Address is the new admin of set_admin and the burner of set_burner.
	Address string `json:"address,omitempty" yaml:"address"`

	Farm      *genesis.Farm    `json:"farm,omitempty" yaml:"farm"`
	Rates     []Rate           `json:"rates,omitempty" yaml:"rates"`
	Fees      []Fee            `json:"fees,omitempty" yaml:"fees"`
	Pauses    []Pause          `json:"pauses,omitempty" yaml:"pauses"`
	Bans      []Ban            `json:"bans,omitempty" yaml:"bans"`
	Operators []OperatorUpdate `json:"operators,omitempty" yaml:"operators"`
	Batches   []TransferBatch  `json:"batches,omitempty" yaml:"batches"`
}

type Rate struct {
	FarmID          uint64 `json:"farmId" yaml:"farmId"`
	RewardPerSecond string `json:"rewardPerSecond" yaml:"rewardPerSecond"`
}

type Fee struct {
	FarmID             uint64 `json:"farmId" yaml:"farmId"`
	HarvestFee         string `json:"harvestFee,omitempty" yaml:"harvestFee"`
	WithdrawalFee      string `json:"withdrawalFee,omitempty" yaml:"withdrawalFee"`
	BurnRewardFraction string `json:"burnRewardFraction,omitempty" yaml:"burnRewardFraction"`
}

type Pause struct {
	FarmID uint64 `json:"farmId" yaml:"farmId"`
	Paused bool   `json:"paused" yaml:"paused"`
}

type Ban struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Banned    bool   `json:"banned" yaml:"banned"`
}

type OperatorUpdate struct {
	Owner    string `json:"owner" yaml:"owner"`
	Operator string `json:"operator" yaml:"operator"`
	Add      bool   `json:"add" yaml:"add"`
}

type TransferBatch struct {
	From string        `json:"from" yaml:"from"`
	Legs []TransferLeg `json:"legs" yaml:"legs"`
}

type TransferLeg struct {
	To      string `json:"to" yaml:"to"`
	TokenID uint64 `json:"tokenId" yaml:"tokenId"`
	Amount  string `json:"amount" yaml:"amount"`
}

// Decode parses a JSON call.
func Decode(data []byte) (*Call, error) {
	var c Call
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(ErrInvalidCall, err.Error())
	}
	return &c, nil
}
