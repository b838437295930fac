// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
)

type Info struct {
	Address            meter.Address `json:"address"`
	Owner              meter.Address `json:"owner"`
	StalenessThreshold uint64        `json:"stalenessThreshold"`
}

type Feed struct {
	Asset       meter.Address `json:"asset"`
	Feed        meter.Address `json:"feed"`
	Decimals    uint8         `json:"decimals"`
	Description string        `json:"description"`
}

// Price is a validated reading. Value is the answer scaled by its decimals.
type Price struct {
	Asset     meter.Address         `json:"asset"`
	Answer    *math.HexOrDecimal256 `json:"answer"`
	Decimals  uint8                 `json:"decimals"`
	Value     string                `json:"value"`
	UpdatedAt uint64                `json:"updatedAt"`
	RoundID   uint64                `json:"roundId"`
}

type SetFeedRequest struct {
	Origin meter.Address `json:"origin"`
	Asset  meter.Address `json:"asset"`
	Feed   meter.Address `json:"feed"`
}

type SetStalenessRequest struct {
	Origin    meter.Address `json:"origin"`
	Threshold uint64        `json:"threshold"`
}

// RoundRequest submits a new answer to a reporter-fed aggregator.
type RoundRequest struct {
	Feed   meter.Address         `json:"feed"`
	Answer *math.HexOrDecimal256 `json:"answer"`
}

type Round struct {
	Feed      meter.Address `json:"feed"`
	RoundID   uint64        `json:"roundId"`
	UpdatedAt uint64        `json:"updatedAt"`
}
