// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import "github.com/meterio/meter-auction/meter"

var (
	AuctionCreatedEvent       = meter.EventTopic("AuctionCreated(address,address,address,uint256,uint256,uint256,uint64,uint64,uint8)")
	ConfigUpdatedEvent        = meter.EventTopic("ConfigUpdated(uint64,address,uint64,uint64,uint64)")
	OwnershipTransferredEvent = meter.EventTopic("OwnershipTransferred(address,address)")
)
