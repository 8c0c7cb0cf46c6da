// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/builtin/token"
)

func TestHarvest_FeeSplit(t *testing.T) {
	tests := []struct {
		variant Variant
		source  acre.Address
		asset   acre.Asset
	}{
		{VariantQ, acre.MintSource, govAsset},
		{VariantT, engineAddr, rewardAsset},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			env := newTestEnv(t, tt.variant)
			id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), HarvestFee: fraction("0.005")})

			r := env.deposit(id, alice, 50, baker1, 0)
			assert.Equal(t, []transferRow{{KindDeposit, alice, engineAddr, 50}}, transfersOf(r))

			r = env.harvest(id, alice, 60)
			assert.Equal(t, []transferRow{
				{KindBurn, tt.source, acre.BurnAddress, 30},
				{KindReward, tt.source, alice, 5970},
			}, transfersOf(r))
			for _, tr := range r.Transfers {
				assert.Equal(t, tt.asset, tr.Asset)
			}

			assert.Equal(t, int64(5970), env.balance(tt.asset, alice))
			assert.Equal(t, int64(30), env.balance(tt.asset, acre.BurnAddress))
			assert.Equal(t, int64(50), env.balance(lpAsset, engineAddr))
		})
	}
}

func TestWithdraw_TimelockFee(t *testing.T) {
	tests := []struct {
		variant Variant
		last    int64
		reserve int64
	}{
		{VariantQ, 10, 6},
		{VariantT, 9, 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			env := newTestEnv(t, tt.variant)
			id := env.addFarm(FarmParams{Timelock: 100, WithdrawalFee: fraction("0.005")})
			env.deposit(id, alice, 10_000, baker1, 0)

			steps := []struct{ amount, net int64 }{
				{1000, 995},
				{200, 199},
				{10, tt.last},
			}
			for _, s := range steps {
				r := env.withdraw(id, alice, s.amount, 1)
				assert.Equal(t, []transferRow{{KindWithdraw, engineAddr, alice, s.net}}, transfersOf(r))
			}

			assert.Equal(t, int64(8790), env.staked(id, alice))
			assert.Equal(t, int64(8790), env.farm(id).total.Int64())
			assert.Equal(t, tt.reserve, env.farm(id).reserve.Int64())

			// no fee once the timelock is over
			r := env.withdraw(id, alice, 10, 100)
			assert.Equal(t, []transferRow{{KindWithdraw, engineAddr, alice, 10}}, transfersOf(r))
		})
	}
}

func TestWithdraw_LockedRewardIsBurnt(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{
		RewardPerSecond: perSecond(100),
		Timelock:        100,
		HarvestFee:      fraction("0.005"),
		WithdrawalFee:   fraction("0.005"),
	})
	env.deposit(id, alice, 1000, baker1, 0)

	r := env.withdraw(id, alice, 1000, 60)
	assert.Equal(t, []transferRow{
		{KindBurn, acre.MintSource, acre.BurnAddress, 6000},
		{KindWithdraw, engineAddr, alice, 995},
	}, transfersOf(r))
	assert.Equal(t, int64(5), env.farm(id).reserve.Int64())
	assert.Equal(t, int64(0), env.farm(id).total.Int64())

	_, err := env.engine.WithdrawFarmDepo(at(alice, 61), id, alice)
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	r, err = env.engine.WithdrawFarmDepo(at(adminAddr, 61), id, carol)
	require.NoError(t, err)
	assert.Equal(t, []transferRow{{KindReserve, engineAddr, carol, 5}}, transfersOf(r))
	assert.Equal(t, int64(0), env.farm(id).reserve.Int64())
	assert.Equal(t, int64(1_000_005), env.balance(lpAsset, carol))

	r, err = env.engine.WithdrawFarmDepo(at(adminAddr, 62), id, carol)
	require.NoError(t, err)
	assert.Empty(t, r.Transfers)
}

func TestTimelock_RewardHeldBack(t *testing.T) {
	t.Run("topping up keeps the reward locked", func(t *testing.T) {
		env := newTestEnv(t, VariantQ)
		id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), Timelock: 120})
		env.deposit(id, alice, 50, baker1, 0)

		r := env.deposit(id, alice, 1, baker1, 60)
		assert.Equal(t, []transferRow{{KindDeposit, alice, engineAddr, 1}}, transfersOf(r))

		r = env.withdraw(id, alice, 50, 60)
		assert.Equal(t, []transferRow{
			{KindBurn, acre.MintSource, acre.BurnAddress, 6000},
			{KindWithdraw, engineAddr, alice, 50},
		}, transfersOf(r))
		assert.Equal(t, int64(0), env.balance(govAsset, alice))

		p, err := env.engine.GetPosition(id, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.Earned.Int64())
		assert.Equal(t, int64(1), p.Staked.Int64())
	})

	t.Run("harvest before a locked withdrawal", func(t *testing.T) {
		env := newTestEnv(t, VariantQ)
		id := env.addFarm(FarmParams{
			RewardPerSecond: perSecond(100),
			Timelock:        100,
			HarvestFee:      fraction("0.005"),
			WithdrawalFee:   fraction("0.005"),
		})
		env.deposit(id, alice, 1000, baker1, 0)

		r := env.harvest(id, alice, 60)
		assert.Empty(t, r.Transfers)
		r = env.deposit(id, alice, 0, baker1, 60)
		assert.Empty(t, r.Transfers)

		p, err := env.engine.GetPosition(id, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), p.Earned.Int64())
		pending, err := env.engine.PendingReward(id, alice, 60)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), pending.Int64())

		r = env.withdraw(id, alice, 1000, 60)
		assert.Equal(t, []transferRow{
			{KindBurn, acre.MintSource, acre.BurnAddress, 6000},
			{KindWithdraw, engineAddr, alice, 995},
		}, transfersOf(r))
		assert.Equal(t, int64(0), env.balance(govAsset, alice))
		assert.Equal(t, int64(6000), env.balance(govAsset, acre.BurnAddress))
	})

	t.Run("paid once the lock is over", func(t *testing.T) {
		env := newTestEnv(t, VariantQ)
		id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), Timelock: 100, HarvestFee: fraction("0.005")})
		env.deposit(id, alice, 1000, baker1, 0)

		r := env.harvest(id, alice, 60)
		assert.Empty(t, r.Transfers)

		r = env.harvest(id, alice, 100)
		assert.Equal(t, []transferRow{
			{KindBurn, acre.MintSource, acre.BurnAddress, 50},
			{KindReward, acre.MintSource, alice, 9950},
		}, transfersOf(r))

		p, err := env.engine.GetPosition(id, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.Earned.Int64())
	})

	t.Run("locked receiver of a transfer", func(t *testing.T) {
		env := newTestEnv(t, VariantQ)
		id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10), Timelock: 100})
		env.deposit(id, alice, 100, baker1, 0)
		env.deposit(id, bob, 100, baker1, 150)

		_, err := env.engine.Transfer(at(alice, 200), id, []TransferBatch{{From: alice, Legs: []TransferLeg{{To: bob, Amount: units(50)}}}})
		require.NoError(t, err)
		p, err := env.engine.GetPosition(id, bob)
		require.NoError(t, err)
		assert.Equal(t, int64(250), p.Earned.Int64())
		assert.Equal(t, int64(0), env.balance(govAsset, bob))
	})
}

func TestZeroAmounts(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100)})

	r := env.deposit(id, alice, 0, baker1, 0)
	assert.Empty(t, r.Transfers)

	r = env.withdraw(id, alice, 0, 0)
	assert.Equal(t, []transferRow{{KindWithdraw, engineAddr, alice, 0}}, transfersOf(r))

	env.deposit(id, alice, 10, baker1, 0)
	r = env.deposit(id, alice, 0, baker1, 10)
	assert.Equal(t, []transferRow{{KindReward, acre.MintSource, alice, 1000}}, transfersOf(r))
	assert.Empty(t, r.Votes)
}

func TestFairSplit(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10)})
	env.deposit(id, alice, 100, baker1, 0)
	env.deposit(id, bob, 300, baker1, 0)

	a := env.harvest(id, alice, 1000)
	b := env.harvest(id, bob, 1000)
	assert.Equal(t, int64(2500), a.Transfers[0].Amount.Int64())
	assert.Equal(t, int64(7500), b.Transfers[0].Amount.Int64())

	id = env.addFarm(FarmParams{RewardPerSecond: perSecond(1)})
	for _, u := range users {
		env.deposit(id, u, 1, baker1, 0)
	}
	for _, u := range users {
		r := env.harvest(id, u, 100)
		assert.Equal(t, []transferRow{{KindReward, acre.MintSource, u, 33}}, transfersOf(r))
	}
}

func TestSetRewardPerSecond_NotRetroactive(t *testing.T) {
	total := func(rs ...*Receipt) int64 {
		var sum int64
		for _, r := range rs {
			for _, tr := range r.Transfers {
				sum += tr.Amount.Int64()
			}
		}
		return sum
	}
	setup := func() (*testEnv, uint64) {
		env := newTestEnv(t, VariantQ)
		id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), HarvestFee: fraction("0.005")})
		env.deposit(id, alice, 50, baker1, 0)
		return env, id
	}

	env, id := setup()
	_, err := env.engine.SetRewardPerSecond(at(adminAddr, 60), []RateEntry{{id, perSecond(10)}})
	require.NoError(t, err)
	late := env.harvest(id, alice, 120)
	assert.Equal(t, []transferRow{
		{KindBurn, acre.MintSource, acre.BurnAddress, 33},
		{KindReward, acre.MintSource, alice, 6567},
	}, transfersOf(late))

	env, id = setup()
	early := env.harvest(id, alice, 60)
	_, err = env.engine.SetRewardPerSecond(at(adminAddr, 60), []RateEntry{{id, perSecond(10)}})
	require.NoError(t, err)
	after := env.harvest(id, alice, 120)
	assert.Equal(t, int64(6600), total(late))
	assert.Equal(t, int64(6600), total(early, after))

	_, err = env.engine.SetRewardPerSecond(at(bob, 120), []RateEntry{{id, perSecond(1)}})
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)
	_, err = env.engine.SetRewardPerSecond(at(adminAddr, 120), []RateEntry{{id, big.NewInt(-1)}})
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
}

func TestHarvest_Idempotent(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), HarvestFee: fraction("0.005")})
	env.deposit(id, alice, 50, baker1, 0)

	r := env.harvest(id, alice, 60)
	require.Len(t, r.Transfers, 2)
	before := env.state.Stage().Hash()
	snapshot := env.encoded(id)

	r = env.harvest(id, alice, 60)
	assert.Empty(t, r.Transfers)
	assert.Empty(t, r.Votes)
	assert.Equal(t, before, env.state.Stage().Hash())
	assert.Equal(t, snapshot, env.encoded(id))
}

func TestFarmIsolation(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	a := env.addFarm(FarmParams{RewardPerSecond: perSecond(5)})
	b := env.addFarm(FarmParams{RewardPerSecond: perSecond(7)})
	env.deposit(b, alice, 100, baker1, 0)
	env.deposit(b, bob, 50, baker2, 0)
	snapshot := env.encoded(b)

	env.deposit(a, alice, 10, baker2, 10)
	env.deposit(a, carol, 30, baker1, 12)
	env.harvest(a, alice, 20)
	env.withdraw(a, carol, 5, 25)
	_, err := env.engine.Transfer(at(alice, 30), a, []TransferBatch{{From: alice, Legs: []TransferLeg{{To: bob, Amount: units(4)}}}})
	require.NoError(t, err)
	_, err = env.engine.PauseFarms(at(adminAddr, 40), []PauseEntry{{a, true}})
	require.NoError(t, err)
	_, err = env.engine.SetFees(at(adminAddr, 41), []FeeEntry{{FarmID: a, HarvestFee: fraction("0.1")}})
	require.NoError(t, err)

	assert.Equal(t, snapshot, env.encoded(b))
}

func TestDelegation(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{})

	r := env.deposit(id, alice, 100, baker1, 0)
	assert.Equal(t, map[acre.Address]int64{baker1: 100}, votesOf(r))

	r = env.deposit(id, bob, 50, baker1, 0)
	assert.Equal(t, map[acre.Address]int64{baker1: 150}, votesOf(r))

	// switching moves the whole post-deposit weight
	r = env.deposit(id, alice, 10, baker2, 1)
	require.Len(t, r.Votes, 2)
	assert.Equal(t, baker1, r.Votes[0].Candidate)
	assert.Equal(t, int64(50), r.Votes[0].Weight.Int64())
	assert.Equal(t, baker2, r.Votes[1].Candidate)
	assert.Equal(t, int64(110), r.Votes[1].Weight.Int64())

	r = env.withdraw(id, alice, 110, 2)
	assert.Equal(t, map[acre.Address]int64{baker2: 0}, votesOf(r))

	p, err := env.engine.GetPosition(id, alice)
	require.NoError(t, err)
	assert.Equal(t, baker2, p.Candidate)

	total, err := env.registry.Total(baker1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total.Int64())

	current, next, err := env.engine.Delegate()
	require.NoError(t, err)
	assert.Equal(t, baker1, current)
	assert.True(t, next.IsZero())

	// an incoming transfer never changes the receiver's candidate, a fresh one adopts the sender's
	_, err = env.engine.Transfer(at(bob, 3), id, []TransferBatch{{From: bob, Legs: []TransferLeg{{To: carol, Amount: units(20)}}}})
	require.NoError(t, err)
	p, err = env.engine.GetPosition(id, carol)
	require.NoError(t, err)
	assert.Equal(t, baker1, p.Candidate)

	r = env.deposit(id, carol, 0, baker2, 4)
	require.Len(t, r.Votes, 2)
	assert.Equal(t, baker1, r.Votes[0].Candidate)
	assert.Equal(t, baker2, r.Votes[1].Candidate)
	assert.Equal(t, map[acre.Address]int64{baker1: 30, baker2: 20}, votesOf(r))

	current, next, err = env.engine.Delegate()
	require.NoError(t, err)
	assert.Equal(t, baker1, current)
	assert.Equal(t, baker2, next)

	// weight is pooled across farms
	other := env.addFarm(FarmParams{})
	r = env.deposit(other, alice, 40, baker2, 5)
	assert.Equal(t, map[acre.Address]int64{baker2: 60}, votesOf(r))

	current, _, err = env.engine.Delegate()
	require.NoError(t, err)
	assert.Equal(t, baker2, current)

	total, err = env.registry.Total(baker2)
	require.NoError(t, err)
	assert.Equal(t, int64(60), total.Int64())
}

func TestDelegation_Bans(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{})
	env.deposit(id, alice, 100, baker1, 0)
	env.deposit(id, bob, 50, baker2, 0)

	_, err := env.engine.BanCandidates(at(alice, 1), []BanEntry{{baker1, true}})
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	_, err = env.engine.BanCandidates(at(adminAddr, 1), []BanEntry{{baker1, true}})
	require.NoError(t, err)

	current, next, err := env.engine.Delegate()
	require.NoError(t, err)
	assert.Equal(t, baker2, current)
	assert.True(t, next.IsZero())

	_, err = env.engine.Deposit(at(carol, 2), id, units(1), baker1, nil)
	assert.ErrorIs(t, err, reverts.ErrBannedCandidate)
	_, err = env.engine.Deposit(at(carol, 2), id, units(1), acre.Address{}, nil)
	assert.ErrorIs(t, err, reverts.ErrInvalidCandidate)

	// existing stake can still leave a banned candidate
	env.withdraw(id, alice, 100, 3)

	_, err = env.engine.BanCandidates(at(adminAddr, 4), []BanEntry{{baker1, false}})
	require.NoError(t, err)
	env.deposit(id, carol, 1, baker1, 5)
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10)})
	env.deposit(id, alice, 100, baker1, 0)
	env.deposit(id, bob, 100, baker2, 0)

	r, err := env.engine.Transfer(at(alice, 10), id, []TransferBatch{{
		From: alice,
		Legs: []TransferLeg{
			{To: bob, Amount: units(30)},
			{To: carol, Amount: units(20)},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, []transferRow{
		{KindReward, acre.MintSource, alice, 50},
		{KindReward, acre.MintSource, bob, 50},
	}, transfersOf(r))
	assert.Equal(t, map[acre.Address]int64{baker1: 70, baker2: 130}, votesOf(r))

	assert.Equal(t, int64(50), env.staked(id, alice))
	assert.Equal(t, int64(130), env.staked(id, bob))
	assert.Equal(t, int64(20), env.staked(id, carol))
	assert.Equal(t, int64(200), env.farm(id).total.Int64())

	p, err := env.engine.GetPosition(id, bob)
	require.NoError(t, err)
	assert.Equal(t, baker2, p.Candidate)
	assert.Equal(t, uint64(0), p.LastStakeTime)

	// zero amount legs harvest both parties
	r, err = env.engine.Transfer(at(bob, 20), id, []TransferBatch{{From: bob, Legs: []TransferLeg{{To: carol, Amount: units(0)}}}})
	require.NoError(t, err)
	assert.Equal(t, []transferRow{
		{KindReward, acre.MintSource, bob, 65},
		{KindReward, acre.MintSource, carol, 10},
	}, transfersOf(r))
	assert.Empty(t, r.Votes)
}

func TestTransfer_Validation(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{})
	locked := env.addFarm(FarmParams{Timelock: 100})
	env.deposit(id, alice, 100, baker1, 0)
	env.deposit(locked, alice, 100, baker1, 0)

	leg := func(to acre.Address, amount int64) []TransferBatch {
		return []TransferBatch{{From: alice, Legs: []TransferLeg{{To: to, Amount: units(amount)}}}}
	}

	tests := []struct {
		name    string
		call    Call
		farmID  uint64
		batches []TransferBatch
		err     error
	}{
		{"wrong asset", at(alice, 1), id, []TransferBatch{{From: alice, Legs: []TransferLeg{{To: bob, TokenID: 1, Amount: units(1)}}}}, reverts.ErrWrongAsset},
		{"self", at(alice, 1), id, leg(alice, 1), reverts.ErrSelfTransfer},
		{"engine", at(alice, 1), id, leg(engineAddr, 1), reverts.ErrForbiddenDestination},
		{"operator", at(bob, 1), id, leg(carol, 1), reverts.ErrNotOperator},
		{"insufficient", at(alice, 1), id, leg(bob, 101), reverts.ErrInsufficientStake},
		{"timelock", at(alice, 50), locked, leg(bob, 1), reverts.ErrTimelockNotFinished},
		{"unknown farm", at(alice, 1), 9, leg(bob, 1), reverts.ErrUnknownFarm},
		{"second leg", at(alice, 1), id, []TransferBatch{{From: alice, Legs: []TransferLeg{
			{To: bob, Amount: units(10)},
			{To: alice, Amount: units(10)},
		}}}, reverts.ErrSelfTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.Transfer(tt.call, tt.farmID, tt.batches)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, int64(100), env.staked(id, alice))
			assert.Equal(t, int64(0), env.staked(id, bob))
		})
	}

	_, err := env.engine.Transfer(at(alice, 100), locked, leg(bob, 1))
	require.NoError(t, err)

	_, err = env.engine.UpdateOperators(at(bob, 1), []OperatorUpdate{{Owner: alice, Operator: bob, Add: true}})
	assert.ErrorIs(t, err, reverts.ErrNotOwner)

	_, err = env.engine.UpdateOperators(at(alice, 1), []OperatorUpdate{{Owner: alice, Operator: bob, Add: true}})
	require.NoError(t, err)
	_, err = env.engine.Transfer(at(bob, 1), id, leg(carol, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.staked(id, carol))

	_, err = env.engine.UpdateOperators(at(alice, 1), []OperatorUpdate{{Owner: alice, Operator: bob}})
	require.NoError(t, err)
	_, err = env.engine.Transfer(at(bob, 1), id, leg(carol, 1))
	assert.ErrorIs(t, err, reverts.ErrNotOperator)
}

func TestPauseFarms(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10)})
	env.deposit(id, alice, 100, baker1, 0)

	_, err := env.engine.PauseFarms(at(alice, 10), []PauseEntry{{id, true}})
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)
	_, err = env.engine.PauseFarms(at(adminAddr, 10), []PauseEntry{{id, true}})
	require.NoError(t, err)

	_, err = env.engine.Deposit(at(bob, 50), id, units(10), baker1, nil)
	assert.ErrorIs(t, err, reverts.ErrFarmPaused)

	r := env.harvest(id, alice, 50)
	assert.Equal(t, []transferRow{{KindReward, acre.MintSource, alice, 100}}, transfersOf(r))

	_, err = env.engine.PauseFarms(at(adminAddr, 60), []PauseEntry{{id, false}})
	require.NoError(t, err)
	r = env.harvest(id, alice, 70)
	assert.Equal(t, []transferRow{{KindReward, acre.MintSource, alice, 100}}, transfersOf(r))

	// withdrawals stay open while paused
	_, err = env.engine.PauseFarms(at(adminAddr, 70), []PauseEntry{{id, true}})
	require.NoError(t, err)
	env.withdraw(id, alice, 100, 80)
}

func TestAdmin(t *testing.T) {
	env := newTestEnv(t, VariantQ)

	_, err := env.engine.AddNewFarm(at(bob, 0), FarmParams{Staked: lpAsset})
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	_, err = env.engine.SetAdmin(at(bob, 0), bob)
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	_, err = env.engine.SetAdmin(at(adminAddr, 0), bob)
	require.NoError(t, err)
	pending, err := env.engine.PendingAdmin()
	require.NoError(t, err)
	assert.Equal(t, bob, pending)

	_, err = env.engine.ConfirmAdmin(at(alice, 0))
	assert.ErrorIs(t, err, reverts.ErrNotPendingAdmin)
	_, err = env.engine.ConfirmAdmin(at(bob, 0))
	require.NoError(t, err)

	current, err := env.engine.Admin()
	require.NoError(t, err)
	assert.Equal(t, bob, current)

	_, err = env.engine.AddNewFarm(at(adminAddr, 0), FarmParams{Staked: lpAsset})
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	_, err = env.engine.SetBurner(at(bob, 0), carol)
	require.NoError(t, err)
	burner, err := env.engine.Burner()
	require.NoError(t, err)
	assert.Equal(t, carol, burner)

	r, err := env.engine.AddNewFarm(at(bob, 0), FarmParams{Staked: lpAsset, RewardPerSecond: perSecond(100), HarvestFee: fraction("0.005")})
	require.NoError(t, err)
	id := *r.NewFarmID
	assert.Equal(t, uint64(0), id)

	env.deposit(id, alice, 50, baker1, 0)
	r = env.harvest(id, alice, 60)
	assert.Equal(t, carol, r.Transfers[0].To)
	assert.Equal(t, KindBurn, r.Transfers[0].Kind)
}

func TestAddNewFarm_Validation(t *testing.T) {
	env := newTestEnv(t, VariantT)
	end := func(v uint64) *uint64 { return &v }

	tests := []struct {
		name   string
		params FarmParams
	}{
		{"end before start", FarmParams{StartTime: 100, EndTime: end(100)}},
		{"timelock", FarmParams{StartTime: 0, EndTime: end(100), Timelock: 101}},
		{"harvest fee", FarmParams{HarvestFee: new(big.Int).Add(acre.Scale, big.NewInt(1))}},
		{"withdrawal fee", FarmParams{WithdrawalFee: big.NewInt(-1)}},
		{"rate", FarmParams{RewardPerSecond: big.NewInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.AddNewFarm(at(adminAddr, 0), tt.params)
			assert.ErrorIs(t, err, reverts.ErrInvalidParams)
		})
	}

	count, err := env.engine.FarmCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	id := env.addFarm(FarmParams{StartTime: 10, EndTime: end(110), Timelock: 100})
	f, err := env.engine.GetFarm(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), f.LastUpdateTime)
	assert.Equal(t, rewardAsset, f.Reward)

	_, err = env.engine.GetFarm(id + 1)
	assert.ErrorIs(t, err, reverts.ErrUnknownFarm)
	_, err = env.engine.Deposit(at(alice, 0), id+1, units(1), baker1, nil)
	assert.ErrorIs(t, err, reverts.ErrUnknownFarm)
}

func TestAddNewFarm_StartInThePast(t *testing.T) {
	for _, variant := range []Variant{VariantQ, VariantT} {
		t.Run(string(variant), func(t *testing.T) {
			env := newTestEnv(t, variant)
			r, err := env.engine.AddNewFarm(at(adminAddr, 1000), FarmParams{
				Staked:          lpAsset,
				Reward:          rewardAsset,
				RewardPerSecond: perSecond(100),
			})
			require.NoError(t, err)
			id := *r.NewFarmID

			f, err := env.engine.GetFarm(id)
			require.NoError(t, err)
			assert.Equal(t, uint64(1000), f.StartTime)
			assert.Equal(t, uint64(1000), f.LastUpdateTime)

			if variant == VariantQ {
				r, err = env.engine.BurnFarmRewards(at(carol, 1000), id)
			} else {
				r, err = env.engine.ClaimFarmRewards(at(adminAddr, 1000), id, carol)
			}
			require.NoError(t, err)
			assert.Empty(t, r.Transfers)
			assert.Equal(t, int64(0), env.farm(id).idle.Int64())
		})
	}

	env := newTestEnv(t, VariantQ)
	end := uint64(1050)
	_, err := env.engine.AddNewFarm(at(adminAddr, 1000), FarmParams{Staked: lpAsset, EndTime: &end, Timelock: 60})
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
	end = 900
	_, err = env.engine.AddNewFarm(at(adminAddr, 1000), FarmParams{Staked: lpAsset, EndTime: &end})
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
}

func TestEmissionWindow(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	end := uint64(100)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10), EndTime: &end})
	env.deposit(id, alice, 100, baker1, 0)

	r := env.harvest(id, alice, 200)
	assert.Equal(t, []transferRow{{KindReward, acre.MintSource, alice, 1000}}, transfersOf(r))

	_, err := env.engine.SetRewardPerSecond(at(adminAddr, 150), []RateEntry{{id, perSecond(1)}})
	assert.ErrorIs(t, err, reverts.ErrFarmFinished)

	env.deposit(id, bob, 100, baker1, 150)
	r = env.harvest(id, bob, 300)
	assert.Empty(t, r.Transfers)

	late := env.addFarm(FarmParams{RewardPerSecond: perSecond(10), StartTime: 50})
	env.deposit(late, carol, 10, baker1, 0)
	r = env.harvest(late, carol, 40)
	assert.Empty(t, r.Transfers)
	r = env.harvest(late, carol, 60)
	assert.Equal(t, []transferRow{{KindReward, acre.MintSource, carol, 100}}, transfersOf(r))
}

func TestBurnFarmRewards(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10), BurnRewardFraction: fraction("0.1")})

	r, err := env.engine.BurnFarmRewards(at(carol, 100), id)
	require.NoError(t, err)
	assert.Equal(t, []transferRow{
		{KindBurn, acre.MintSource, acre.BurnAddress, 900},
		{KindReward, acre.MintSource, carol, 100},
	}, transfersOf(r))

	r, err = env.engine.BurnFarmRewards(at(carol, 100), id)
	require.NoError(t, err)
	assert.Empty(t, r.Transfers)

	env.deposit(id, alice, 10, baker1, 100)
	env.withdraw(id, alice, 10, 150)
	assert.Equal(t, int64(0), env.farm(id).idle.Int64())

	r, err = env.engine.BurnFarmRewards(at(bob, 200), id)
	require.NoError(t, err)
	assert.Equal(t, []transferRow{
		{KindBurn, acre.MintSource, acre.BurnAddress, 450},
		{KindReward, acre.MintSource, bob, 50},
	}, transfersOf(r))
}

func TestClaimFarmRewards(t *testing.T) {
	env := newTestEnv(t, VariantT)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(10)})

	_, err := env.engine.ClaimFarmRewards(at(bob, 100), id, bob)
	assert.ErrorIs(t, err, reverts.ErrNotAdmin)

	r, err := env.engine.ClaimFarmRewards(at(adminAddr, 100), id, bob)
	require.NoError(t, err)
	assert.Equal(t, []transferRow{{KindClaim, engineAddr, bob, 1000}}, transfersOf(r))
	assert.Equal(t, int64(1000), env.balance(rewardAsset, bob))
}

func TestReferrer(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100), HarvestFee: fraction("0.005")})

	_, err := env.engine.Deposit(at(alice, 0), id, units(50), baker1, &alice)
	assert.ErrorIs(t, err, reverts.ErrSelfReferral)

	_, err = env.engine.Deposit(at(alice, 0), id, units(50), baker1, &referrer)
	require.NoError(t, err)

	r := env.harvest(id, alice, 60)
	assert.Equal(t, []transferRow{
		{KindReferral, acre.MintSource, referrer, 30},
		{KindReward, acre.MintSource, alice, 5970},
	}, transfersOf(r))
}

func TestFailedTransferRevertsCall(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{})

	_, err := env.engine.Deposit(at(alice, 0), id, units(2_000_000), baker1, nil)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	assert.False(t, reverts.IsRevertErr(err))

	assert.Equal(t, int64(0), env.staked(id, alice))
	assert.Equal(t, int64(0), env.farm(id).total.Int64())
	w, err := env.engine.CandidateWeight(baker1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Int64())
	total, err := env.registry.Total(baker1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Int64())
}

func TestViews(t *testing.T) {
	env := newTestEnv(t, VariantQ)
	id := env.addFarm(FarmParams{RewardPerSecond: perSecond(100)})
	env.deposit(id, alice, 50, baker1, 0)

	pending, err := env.engine.PendingReward(id, alice, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), pending.Int64())

	f, err := env.engine.GetFarm(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.LastUpdateTime)

	balances, err := env.engine.BalanceOf([]BalanceRequest{
		{FarmID: id, Owner: alice},
		{FarmID: id, Owner: bob},
	})
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, int64(50), balances[0].Int64())
	assert.Equal(t, int64(0), balances[1].Int64())

	_, err = env.engine.BalanceOf([]BalanceRequest{{FarmID: id, Owner: alice, TokenID: 1}})
	assert.ErrorIs(t, err, reverts.ErrWrongAsset)
}
