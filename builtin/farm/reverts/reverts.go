// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a user facing failure. The whole call is rolled back and the
// message is reported to the caller verbatim.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrNotAdmin             = New("not admin")
	ErrNotPendingAdmin      = New("not pending admin")
	ErrNotOwner             = New("not owner")
	ErrNotOperator          = New("not operator")
	ErrFarmPaused           = New("farm paused")
	ErrFarmFinished         = New("farm finished")
	ErrUnknownFarm          = New("unknown farm")
	ErrInsufficientStake    = New("insufficient stake")
	ErrWrongAsset           = New("wrong asset")
	ErrSelfTransfer         = New("self transfer")
	ErrSelfReferral         = New("self referral")
	ErrForbiddenDestination = New("forbidden destination")
	ErrTimelockNotFinished  = New("timelock not finished")
	ErrBannedCandidate      = New("banned candidate")
	ErrInvalidCandidate     = New("invalid candidate")
	ErrInvalidParams        = New("invalid params")
)
