// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

const (
	OP_BID      = uint32(1)
	OP_SETTLE   = uint32(2)
	OP_CANCEL   = uint32(3)
	OP_WITHDRAW = uint32(4)
	OP_SYNC     = uint32(5)
)

// AuctionBody is the payload of a clause sent to an auction instance. The
// amount of a bid is the value attached to the clause.
type AuctionBody struct {
	Opcode    uint32
	Version   uint32
	Timestamp uint64
	Nonce     uint64
}

func (ab *AuctionBody) ToString() string {
	return fmt.Sprintf("AuctionBody: Opcode=%v, Version=%v, Timestamp=%v, Nonce=%v",
		ab.Opcode, ab.Version, ab.Timestamp, ab.Nonce)
}

func (ab *AuctionBody) String() string {
	return ab.ToString()
}

func (ab *AuctionBody) GetOpName(op uint32) string {
	switch op {
	case OP_BID:
		return "Bid"
	case OP_SETTLE:
		return "Settle"
	case OP_CANCEL:
		return "Cancel"
	case OP_WITHDRAW:
		return "Withdraw"
	case OP_SYNC:
		return "Sync"
	default:
		return "Unknown"
	}
}

func EncodeToBytes(ab *AuctionBody) ([]byte, error) {
	return rlp.EncodeToBytes(ab)
}

func DecodeFromBytes(bytes []byte) (*AuctionBody, error) {
	ab := AuctionBody{}
	err := rlp.DecodeBytes(bytes, &ab)
	return &ab, err
}

