// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
)

// names of the events emitted by the modules, keyed by topic0
var eventNames = map[meter.Bytes32]string{
	oracle.FeedUpdatedEvent:               "FeedUpdated",
	oracle.OwnershipTransferredEvent:      "OwnershipTransferred",
	oracle.StalenessThresholdUpdatedEvent: "StalenessThresholdUpdated",
	factory.AuctionCreatedEvent:           "AuctionCreated",
	factory.ConfigUpdatedEvent:            "ConfigUpdated",
	auction.BidAcceptedEvent:              "BidAccepted",
	auction.EndTimeExtendedEvent:          "EndTimeExtended",
	auction.AuctionSettledEvent:           "AuctionSettled",
	auction.AuctionCancelledEvent:         "AuctionCancelled",
	auction.FundsCreditedEvent:            "FundsCredited",
	auction.WithdrawnEvent:                "Withdrawn",
	nft.TransferEvent:                     "Transfer",
	nft.ApprovalEvent:                     "Approval",
	nft.ApprovalForAllEvent:               "ApprovalForAll",
}

var eventTopics = func() map[string]meter.Bytes32 {
	m := make(map[string]meter.Bytes32, len(eventNames))
	for topic, name := range eventNames {
		m[name] = topic
	}
	return m
}()

// EventName returns the name of a known event signature topic.
func EventName(topic0 meter.Bytes32) (string, bool) {
	name, ok := eventNames[topic0]
	return name, ok
}

// EventTopic returns the signature topic of a known event name.
func EventTopic(name string) (meter.Bytes32, bool) {
	topic, ok := eventTopics[name]
	return topic, ok
}
