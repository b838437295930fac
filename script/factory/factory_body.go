// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
)

const (
	OP_CREATE             = uint32(1)
	OP_SET_CONFIG         = uint32(2)
	OP_TRANSFER_OWNERSHIP = uint32(3)
)

var errUnknownOp = meter.NewError(meter.KindValidationFailure, "unknown factory opcode")

// FactoryBody is the payload of a factory clause. Create uses the auction
// fields, SetConfig the config fields, TransferOwnership NewOwner.
type FactoryBody struct {
	Opcode  uint32
	Version uint32

	AssetContract   meter.Address
	TokenID         *big.Int
	PaymentToken    meter.Address
	PaymentDecimals uint8
	Denomination    uint8
	Oracle          meter.Address
	ReservePrice    *big.Int
	MinIncrement    *big.Int
	StartTime       uint64
	EndTime         uint64

	FeeBps          uint64
	FeeRecipient    meter.Address
	AntiSnipeWindow uint64
	Extension       uint64
	StartTolerance  uint64

	NewOwner meter.Address
}

func (fb *FactoryBody) ToString() string {
	return fmt.Sprintf("FactoryBody: Opcode=%v, Version=%v, Asset=%v#%v, PaymentToken=%v, Denomination=%v, Reserve=%v, MinIncrement=%v, Start=%v, End=%v, Fee=%v, FeeRecipient=%v, Window=%v, Extension=%v, NewOwner=%v",
		fb.Opcode, fb.Version, fb.AssetContract, fb.TokenID, fb.PaymentToken, fb.Denomination, fb.ReservePrice, fb.MinIncrement,
		fb.StartTime, fb.EndTime, fb.FeeBps, fb.FeeRecipient, fb.AntiSnipeWindow, fb.Extension, fb.NewOwner)
}

func GetOpName(op uint32) string {
	switch op {
	case OP_CREATE:
		return "CreateAuction"
	case OP_SET_CONFIG:
		return "SetConfig"
	case OP_TRANSFER_OWNERSHIP:
		return "TransferOwnership"
	default:
		return "Unknown"
	}
}

func EncodeToBytes(fb *FactoryBody) ([]byte, error) {
	for _, v := range []**big.Int{&fb.TokenID, &fb.ReservePrice, &fb.MinIncrement} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	return rlp.EncodeToBytes(fb)
}

func DecodeFromBytes(bytes []byte) (*FactoryBody, error) {
	fb := FactoryBody{}
	err := rlp.DecodeBytes(bytes, &fb)
	return &fb, err
}

// CreateParams extracts the auction terms of an OP_CREATE body.
func (fb *FactoryBody) CreateParams() *CreateParams {
	return &CreateParams{
		Asset:           auction.Asset{Contract: fb.AssetContract, TokenID: fb.TokenID},
		PaymentToken:    fb.PaymentToken,
		PaymentDecimals: fb.PaymentDecimals,
		Denomination:    auction.Denomination(fb.Denomination),
		Oracle:          fb.Oracle,
		ReservePrice:    fb.ReservePrice,
		MinIncrement:    fb.MinIncrement,
		StartTime:       fb.StartTime,
		EndTime:         fb.EndTime,
	}
}

// Config extracts the platform rules of an OP_SET_CONFIG body.
func (fb *FactoryBody) Config() *Config {
	return &Config{
		FeeBps:          fb.FeeBps,
		FeeRecipient:    fb.FeeRecipient,
		AntiSnipeWindow: fb.AntiSnipeWindow,
		Extension:       fb.Extension,
		StartTolerance:  fb.StartTolerance,
	}
}

// Handler executes a factory clause. Create returns the new auction address
// as return data.
func Handler(env *setypes.ScriptEnv, payload []byte, to meter.Address) error {
	fb, err := DecodeFromBytes(payload)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return meter.NewError(meter.KindValidationFailure, "malformed factory body")
	}
	if env.GetTxCtx().GetValue().Sign() != 0 {
		return meter.NewError(meter.KindValidationFailure, GetOpName(fb.Opcode)+" does not accept payment")
	}
	log.Debug("Entering factory handler "+GetOpName(fb.Opcode), "body", fb.ToString())

	f := New(to, env.GetState())
	switch fb.Opcode {
	case OP_CREATE:
		addr, err := f.CreateAuction(env, fb.CreateParams())
		if err != nil {
			return err
		}
		env.SetReturnData(addr.Bytes())
		return nil
	case OP_SET_CONFIG:
		return f.SetConfig(env, fb.Config())
	case OP_TRANSFER_OWNERSHIP:
		return f.TransferOwnership(env, fb.NewOwner)
	default:
		log.Error("unknown Opcode", "Opcode", fb.Opcode)
		return errUnknownOp
	}
}
