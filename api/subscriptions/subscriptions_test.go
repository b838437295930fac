// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, node *apitest.Node) (string, func()) {
	subs := subscriptions.New(node.Runtime, []string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions", func() {
		ts.Close()
		subs.Close()
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *subscriptions.EventMessage {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg subscriptions.EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func TestEventSubscription(t *testing.T) {
	defer leaktest.Check(t)()
	node := apitest.NewNode(t)
	defer node.Close()
	url, shutdown := serve(t, node)
	defer shutdown()

	seller, bidder := apitest.Account(1), apitest.Account(2)
	first := node.CreateAuction(seller, 100, 10, apitest.LaunchTime, apitest.LaunchTime+1000)

	created := factory.AuctionCreatedEvent
	conn := dial(t, url+"/event?pos=0&address="+meter.FactoryModuleAddr.String()+"&topic0="+created.String())
	defer conn.Close()

	// replayed from the log
	msg := readEvent(t, conn)
	assert.Equal(t, meter.FactoryModuleAddr, msg.Address)
	assert.Equal(t, created, msg.Topics[0])
	assert.Equal(t, first, meter.BytesToAddress(msg.Topics[1].Bytes()))

	second := node.CreateAuction(seller, 100, 10, apitest.LaunchTime, apitest.LaunchTime+1000)
	node.Exec(bidder, second, big.NewInt(150), &auction.AuctionBody{Opcode: auction.OP_BID})
	third := node.CreateAuction(bidder, 100, 10, apitest.LaunchTime, apitest.LaunchTime+1000)

	// live, bids filtered out
	msg = readEvent(t, conn)
	assert.Equal(t, second, meter.BytesToAddress(msg.Topics[1].Bytes()))
	msg = readEvent(t, conn)
	assert.Equal(t, third, meter.BytesToAddress(msg.Topics[1].Bytes()))
	assert.Equal(t, bidder, msg.Meta.TxOrigin)
}

func TestReceiptSubscription(t *testing.T) {
	defer leaktest.Check(t)()
	node := apitest.NewNode(t)
	defer node.Close()
	url, shutdown := serve(t, node)
	defer shutdown()

	conn := dial(t, url+"/receipt")
	defer conn.Close()

	r := node.Exec(apitest.Owner(), meter.NFTModuleAddr, nil, &nft.NFTBody{Opcode: nft.OP_MINT, To: apitest.Account(1)})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var receipt transactions.Receipt
	require.NoError(t, conn.ReadJSON(&receipt))
	assert.Equal(t, r.TxID, receipt.Meta.TxID)
	assert.Len(t, receipt.Events, 1)
}

func TestBadSubject(t *testing.T) {
	defer leaktest.Check(t)()
	node := apitest.NewNode(t)
	defer node.Close()
	url, shutdown := serve(t, node)
	defer shutdown()

	_, res, err := websocket.DefaultDialer.Dial(url+"/blocks", nil)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	_, res, err = websocket.DefaultDialer.Dial(url+"/event?address=bad", nil)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
