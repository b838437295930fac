// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
)

const (
	OP_SET_FEED           = uint32(1)
	OP_SET_STALENESS      = uint32(2)
	OP_TRANSFER_OWNERSHIP = uint32(3)
)

var errUnknownOp = meter.NewError(meter.KindValidationFailure, "unknown oracle opcode")

// OracleBody is the payload of an oracle clause.
type OracleBody struct {
	Opcode    uint32
	Version   uint32
	Asset     meter.Address
	Feed      meter.Address
	Threshold uint64
	NewOwner  meter.Address
}

func (ob *OracleBody) ToString() string {
	return fmt.Sprintf("OracleBody: Opcode=%v, Version=%v, Asset=%v, Feed=%v, Threshold=%v, NewOwner=%v",
		ob.Opcode, ob.Version, ob.Asset, ob.Feed, ob.Threshold, ob.NewOwner)
}

func GetOpName(op uint32) string {
	switch op {
	case OP_SET_FEED:
		return "SetPriceFeed"
	case OP_SET_STALENESS:
		return "SetStalenessThreshold"
	case OP_TRANSFER_OWNERSHIP:
		return "TransferOwnership"
	default:
		return "Unknown"
	}
}

func EncodeToBytes(ob *OracleBody) ([]byte, error) {
	return rlp.EncodeToBytes(ob)
}

func DecodeFromBytes(bytes []byte) (*OracleBody, error) {
	ob := OracleBody{}
	err := rlp.DecodeBytes(bytes, &ob)
	return &ob, err
}

// Handler executes an oracle clause addressed to `to`.
func Handler(env *setypes.ScriptEnv, payload []byte, to meter.Address) error {
	ob, err := DecodeFromBytes(payload)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return meter.NewError(meter.KindValidationFailure, "malformed oracle body")
	}
	log.Debug("Entering oracle handler "+GetOpName(ob.Opcode), "body", ob.ToString())

	o := New(to, env.GetState())
	switch ob.Opcode {
	case OP_SET_FEED:
		return o.SetPriceFeed(env, ob.Asset, ob.Feed)
	case OP_SET_STALENESS:
		return o.SetStalenessThreshold(env, ob.Threshold)
	case OP_TRANSFER_OWNERSHIP:
		return o.TransferOwnership(env, ob.NewOwner)
	default:
		log.Error("unknown Opcode", "Opcode", ob.Opcode)
		return errUnknownOp
	}
}
