// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import "github.com/meterio/meter-auction/meter"

var (
	TransferEvent       = meter.EventTopic("Transfer(address,address,uint256)")
	ApprovalEvent       = meter.EventTopic("Approval(address,address,uint256)")
	ApprovalForAllEvent = meter.EventTopic("ApprovalForAll(address,address,bool)")
)
