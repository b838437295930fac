// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	node := apitest.NewNode(t)
	router := mux.NewRouter()
	events.New(node.LogDB).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	defer ts.Close()

	seller, bidder := apitest.Account(1), apitest.Account(2)
	addr := node.CreateAuction(seller, 100, 10, apitest.LaunchTime, apitest.LaunchTime+1000)
	r := node.Exec(bidder, addr, big.NewInt(150), &auction.AuctionBody{Opcode: auction.OP_BID})

	filter := func(f *events.EventFilter) []*events.FilteredEvent {
		res, status := apitest.HTTPPost(t, ts.URL+"/logs/event", f)
		require.Equal(t, http.StatusOK, status, string(res))
		var fes []*events.FilteredEvent
		require.NoError(t, json.Unmarshal(res, &fes))
		return fes
	}

	created := factory.AuctionCreatedEvent
	fes := filter(&events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{
			Address:  &meter.FactoryModuleAddr,
			TopicSet: events.TopicSet{Topic0: &created},
		}},
	})
	require.Len(t, fes, 1)
	assert.Equal(t, seller, fes[0].Meta.TxOrigin)

	accepted := auction.BidAcceptedEvent
	fes = filter(&events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{
			Address:  &addr,
			TopicSet: events.TopicSet{Topic0: &accepted},
		}},
	})
	require.Len(t, fes, 1)
	assert.Equal(t, r.TxID, fes[0].Meta.TxID)
	assert.Equal(t, uint64(r.Seq), fes[0].Meta.Seq)

	all := filter(&events.EventFilter{Order: logdb.DESC})
	require.NotEmpty(t, all)
	assert.Equal(t, uint64(r.Seq), all[0].Meta.Seq)

	fes = filter(&events.EventFilter{Range: &logdb.Range{Unit: logdb.Seq, From: uint64(r.Seq), To: uint64(r.Seq)}})
	assert.Len(t, fes, 1)

	fes = filter(&events.EventFilter{Options: &logdb.Options{Offset: 0, Limit: 2}})
	assert.Len(t, fes, 2)

	fes = filter(&events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{Address: &addr, Event: "BidAccepted"}},
	})
	require.Len(t, fes, 1)
	assert.Equal(t, "BidAccepted", fes[0].Name)
	assert.Equal(t, accepted, *fes[0].Topics[0])

	for _, body := range []interface{}{
		map[string]interface{}{"bogus": 1},
		map[string]interface{}{"criteriaSet": []interface{}{map[string]interface{}{"event": "Nope"}}},
		map[string]interface{}{"criteriaSet": []interface{}{map[string]interface{}{"event": "BidAccepted", "topic0": accepted}}},
		map[string]interface{}{"order": "sideways"},
		map[string]interface{}{"options": map[string]interface{}{"offset": 0, "limit": 5000}},
	} {
		res, status := apitest.HTTPPost(t, ts.URL+"/logs/event", body)
		assert.Equal(t, http.StatusBadRequest, status, string(res))
	}
}

func TestEventNames(t *testing.T) {
	name, ok := events.EventName(auction.AuctionSettledEvent)
	assert.True(t, ok)
	assert.Equal(t, "AuctionSettled", name)

	topic, ok := events.EventTopic("AuctionCreated")
	assert.True(t, ok)
	assert.Equal(t, factory.AuctionCreatedEvent, topic)

	_, ok = events.EventName(meter.Bytes32{})
	assert.False(t, ok)
}
