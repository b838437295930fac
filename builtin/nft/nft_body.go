// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
)

const (
	OP_DEPLOY       = uint32(1)
	OP_MINT         = uint32(2)
	OP_APPROVE      = uint32(3)
	OP_APPROVE_ALL  = uint32(4)
	OP_TRANSFERFROM = uint32(5)
)

var errUnknownOp = meter.NewError(meter.KindValidationFailure, "unknown nft opcode")

// NFTBody is the payload of a collection clause.
type NFTBody struct {
	Opcode   uint32
	Version  uint32
	Name     string
	Symbol   string
	From     meter.Address
	To       meter.Address
	TokenID  *big.Int
	Approved bool
	URI      string
}

func (nb *NFTBody) ToString() string {
	return fmt.Sprintf("NFTBody: Opcode=%v, Version=%v, Name=%v, Symbol=%v, From=%v, To=%v, TokenID=%v, Approved=%v, URI=%v",
		nb.Opcode, nb.Version, nb.Name, nb.Symbol, nb.From, nb.To, nb.TokenID, nb.Approved, nb.URI)
}

func GetOpName(op uint32) string {
	switch op {
	case OP_DEPLOY:
		return "Deploy"
	case OP_MINT:
		return "Mint"
	case OP_APPROVE:
		return "Approve"
	case OP_APPROVE_ALL:
		return "SetApprovalForAll"
	case OP_TRANSFERFROM:
		return "TransferFrom"
	default:
		return "Unknown"
	}
}

func EncodeToBytes(nb *NFTBody) ([]byte, error) {
	if nb.TokenID == nil {
		nb.TokenID = new(big.Int)
	}
	return rlp.EncodeToBytes(nb)
}

func DecodeFromBytes(bytes []byte) (*NFTBody, error) {
	nb := NFTBody{}
	err := rlp.DecodeBytes(bytes, &nb)
	return &nb, err
}

// Handler executes a collection clause addressed to `to`. Mint returns the
// new token id as return data.
func Handler(env *setypes.ScriptEnv, payload []byte, to meter.Address) error {
	nb, err := DecodeFromBytes(payload)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return meter.NewError(meter.KindValidationFailure, "malformed nft body")
	}
	log.Debug("Entering nft handler "+GetOpName(nb.Opcode), "body", nb.ToString())

	n := New(to, env.GetState())
	switch nb.Opcode {
	case OP_DEPLOY:
		return n.Deploy(nb.Name, nb.Symbol, env.Origin())
	case OP_MINT:
		id, err := n.Mint(env, nb.To, nb.URI)
		if err != nil {
			return err
		}
		env.SetReturnData(id.Bytes())
		return nil
	case OP_APPROVE:
		return n.Approve(env, nb.To, nb.TokenID)
	case OP_APPROVE_ALL:
		return n.SetApprovalForAll(env, nb.To, nb.Approved)
	case OP_TRANSFERFROM:
		return n.TransferFrom(env, env.Origin(), nb.From, nb.To, nb.TokenID)
	default:
		log.Error("unknown Opcode", "Opcode", nb.Opcode)
		return errUnknownOp
	}
}
