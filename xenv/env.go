// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"fmt"
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// TransactionContext transaction context.
type TransactionContext struct {
	ID     meter.Bytes32
	Origin meter.Address
	Value  *big.Int // payment attached to the call, in the target's payment token
	Time   uint64   // ledger time of the operation, unix seconds
	Nonce  uint64
	Seq    uint32
}

// NewTransactionContext returns a context with a zero value.
func NewTransactionContext(origin meter.Address, now uint64) *TransactionContext {
	return &TransactionContext{
		Origin: origin,
		Value:  new(big.Int),
		Time:   now,
	}
}

// GetValue returns the attached payment, never nil.
func (ctx *TransactionContext) GetValue() *big.Int {
	if ctx.Value == nil {
		return new(big.Int)
	}
	return ctx.Value
}

func (ctx *TransactionContext) String() string {
	return fmt.Sprintf("txCtx{ID:%s Origin:%s Value:%s Time:%d Nonce:%d Seq:%d}", ctx.ID.String(), ctx.Origin.String(), ctx.GetValue().String(), ctx.Time, ctx.Nonce, ctx.Seq)
}
