// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/meterio/meter-auction/meter"

var (
	BidAcceptedEvent      = meter.EventTopic("BidAccepted(address,uint256,uint256,uint64)")
	EndTimeExtendedEvent  = meter.EventTopic("EndTimeExtended(uint64,uint64)")
	AuctionSettledEvent   = meter.EventTopic("AuctionSettled(address,uint256,uint256,uint256)")
	AuctionCancelledEvent = meter.EventTopic("AuctionCancelled(address)")
	FundsCreditedEvent    = meter.EventTopic("FundsCredited(address,uint256)")
	WithdrawnEvent        = meter.EventTopic("Withdrawn(address,uint256)")
)
