// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// Transfer token transfer log.
type Transfer struct {
	Sender    meter.Address
	Recipient meter.Address
	Amount    *big.Int
	Token     meter.Address // zero for native currency
}

func (t *Transfer) String() string {
	return fmt.Sprintf("Transfer(%v -> %v, amount=%v, token=%v)", t.Sender, t.Recipient, t.Amount, t.Token)
}

// Transfers slisce of transfer logs.
type Transfers []*Transfer
