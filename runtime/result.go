// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/call"
)

// Status of an executed call.
const (
	StatusOK       = "ok"
	StatusReverted = "reverted"
	// StatusFailed marks calls aborted by a collaborator, e.g. a token
	// transfer over the sender's balance.
	StatusFailed = "failed"
)

// Result is the outcome of one sequenced call. Failed calls are sequenced
// too; their Receipt is nil and nothing they did is kept.
type Result struct {
	Seq     uint64        `json:"seq"`
	Call    *call.Call    `json:"call"`
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Receipt *farm.Receipt `json:"receipt,omitempty"`
}

func (r *Result) OK() bool {
	return r.Status == StatusOK
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case reverts.IsRevertErr(err):
		return StatusReverted
	default:
		return StatusFailed
	}
}
