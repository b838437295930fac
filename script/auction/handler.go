// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

var errUnknownOp = meter.NewError(meter.KindValidationFailure, "unknown auction opcode")

// Handler executes a clause addressed to the instance at `to`.
func Handler(env *setypes.ScriptEnv, payload []byte, to meter.Address) (err error) {
	ab, err := DecodeFromBytes(payload)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return meter.NewError(meter.KindValidationFailure, "malformed auction body")
	}
	defer func() {
		if err != nil {
			env.SetReturnData([]byte(err.Error()))
		}
	}()

	a := New(to, env.GetState())
	if !a.Exists() {
		return errors.WithMessagef(ErrNotInitialized, "instance %v", to)
	}
	if ab.Opcode != OP_BID && env.GetTxCtx().GetValue().Sign() != 0 {
		return meter.NewError(meter.KindValidationFailure, ab.GetOpName(ab.Opcode)+" does not accept payment")
	}

	log.Debug("Entering auction handler "+ab.GetOpName(ab.Opcode), "auction", to, "body", ab.ToString())
	switch ab.Opcode {
	case OP_BID:
		return a.Bid(env)
	case OP_SETTLE:
		return a.Settle(env)
	case OP_CANCEL:
		return a.Cancel(env)
	case OP_WITHDRAW:
		return a.Withdraw(env)
	case OP_SYNC:
		return a.Sync(env)
	default:
		log.Error("unknown Opcode", "Opcode", ab.Opcode)
		return errUnknownOp
	}
}
