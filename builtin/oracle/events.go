// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import "github.com/meterio/meter-auction/meter"

var (
	FeedUpdatedEvent               = meter.EventTopic("FeedUpdated(address,address,uint8)")
	OwnershipTransferredEvent      = meter.EventTopic("OwnershipTransferred(address,address)")
	StalenessThresholdUpdatedEvent = meter.EventTopic("StalenessThresholdUpdated(uint64)")
)
