// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/meter"
)

type Collection struct {
	Address     meter.Address         `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Minter      meter.Address         `json:"minter"`
	TotalMinted *math.HexOrDecimal256 `json:"totalMinted"`
}

type Token struct {
	Contract meter.Address         `json:"contract"`
	TokenID  *math.HexOrDecimal256 `json:"tokenId"`
	Owner    meter.Address         `json:"owner"`
	Approved meter.Address         `json:"approved"`
	URI      string                `json:"uri"`
}

type Balance struct {
	Owner   meter.Address         `json:"owner"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type MintRequest struct {
	Origin meter.Address `json:"origin"`
	To     meter.Address `json:"to"`
	URI    string        `json:"uri"`
}

type MintResult struct {
	TokenID *math.HexOrDecimal256 `json:"tokenId"`
	Receipt *transactions.Receipt `json:"receipt"`
}

type ApproveRequest struct {
	Origin  meter.Address         `json:"origin"`
	To      meter.Address         `json:"to"`
	TokenID *math.HexOrDecimal256 `json:"tokenId"`
}

type ApprovalForAllRequest struct {
	Origin   meter.Address `json:"origin"`
	Operator meter.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

type TransferRequest struct {
	Origin  meter.Address         `json:"origin"`
	From    meter.Address         `json:"from"`
	To      meter.Address         `json:"to"`
	TokenID *math.HexOrDecimal256 `json:"tokenId"`
}
