// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
)

// Account balance of one token. Token is zero for the native currency.
type Account struct {
	Address meter.Address        `json:"address"`
	Token   meter.Address        `json:"token"`
	Balance math.HexOrDecimal256 `json:"balance"`
}
