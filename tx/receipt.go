// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
)

// Receipt is the outcome of one successfully executed operation.
type Receipt struct {
	Seq       uint32 // position in the ledger's total order
	Time      uint64
	TxID      meter.Bytes32
	Origin    meter.Address
	Events    Events
	Transfers Transfers
	Output    []byte
}

// ID derives the operation id from its context and ledger position.
func ID(origin meter.Address, value *big.Int, time uint64, nonce uint64, seq uint32) (id meter.Bytes32) {
	if value == nil {
		value = new(big.Int)
	}
	hw := meter.NewBlake2b()
	if err := rlp.Encode(hw, []interface{}{origin, value, time, nonce, seq}); err != nil {
		return meter.Bytes32{}
	}
	hw.Sum(id[:0])
	return
}
