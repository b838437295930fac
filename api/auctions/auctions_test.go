// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/api/auctions"
	"github.com/meterio/meter-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*apitest.Node, *httptest.Server) {
	node := apitest.NewNode(t)
	router := mux.NewRouter()
	auctions.New(node.Runtime).Mount(router, "/auctions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return node, ts
}

func getAuction(t *testing.T, ts *httptest.Server, addr meter.Address) *auctions.Auction {
	res, status := apitest.HTTPGet(t, ts.URL+"/auctions/"+addr.String())
	require.Equal(t, http.StatusOK, status, string(res))
	var a auctions.Auction
	require.NoError(t, json.Unmarshal(res, &a))
	return &a
}

func TestAuctionLifecycle(t *testing.T) {
	node, ts := newServer(t)
	seller, bidder, other := apitest.Account(1), apitest.Account(2), apitest.Account(3)
	id := node.Mint(seller)

	res, status := apitest.HTTPPost(t, ts.URL+"/auctions", map[string]interface{}{
		"origin":        seller,
		"assetContract": meter.NFTModuleAddr,
		"tokenId":       id.String(),
		"reservePrice":  "100",
		"minIncrement":  "10",
		"startTime":     apitest.LaunchTime,
		"endTime":       apitest.LaunchTime + 1000,
	})
	require.Equal(t, http.StatusOK, status, string(res))
	var created auctions.CreateResult
	require.NoError(t, json.Unmarshal(res, &created))
	assert.False(t, created.Address.IsZero())
	assert.NotEmpty(t, created.Receipt.Events)

	a := getAuction(t, ts, created.Address)
	assert.Equal(t, seller, a.Seller)
	assert.Equal(t, "Active", a.Status)
	assert.Equal(t, "native", a.Denomination)
	assert.Equal(t, uint64(300), a.Terms.AntiSnipeWindow)

	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/bid", map[string]interface{}{
		"origin": bidder,
		"value":  "150",
	})
	require.Equal(t, http.StatusOK, status, string(res))

	// below highest + increment
	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/bid", map[string]interface{}{
		"origin": other,
		"value":  "155",
	})
	assert.Equal(t, http.StatusBadRequest, status, string(res))

	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/bid", map[string]interface{}{
		"origin": other,
	})
	assert.Equal(t, http.StatusBadRequest, status, string(res))

	a = getAuction(t, ts, created.Address)
	assert.Equal(t, int64(150), (*big.Int)(a.HighestBid).Int64())
	assert.Equal(t, bidder, a.HighestBidder)
	assert.Equal(t, uint64(1), a.BidCount)

	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/settle", map[string]interface{}{"origin": other})
	assert.Equal(t, http.StatusConflict, status, string(res))

	node.Clock.Set(apitest.LaunchTime + 1000)
	assert.Equal(t, "Ended", getAuction(t, ts, created.Address).Status)

	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/settle", map[string]interface{}{"origin": other})
	require.Equal(t, http.StatusOK, status, string(res))
	assert.Equal(t, "Settled", getAuction(t, ts, created.Address).Status)

	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/"+created.Address.String()+"/cancel", map[string]interface{}{"origin": seller})
	assert.Equal(t, http.StatusConflict, status, string(res))

	res, status = apitest.HTTPGet(t, ts.URL+"/auctions/"+created.Address.String()+"/withdrawals/"+bidder.String())
	require.Equal(t, http.StatusOK, status, string(res))
	var wd auctions.Withdrawal
	require.NoError(t, json.Unmarshal(res, &wd))
	assert.Zero(t, (*big.Int)(wd.Amount).Sign())
}

func TestListAuctions(t *testing.T) {
	node, ts := newServer(t)
	seller, other := apitest.Account(1), apitest.Account(2)
	first := node.CreateAuction(seller, 100, 10, apitest.LaunchTime, apitest.LaunchTime+100)
	node.CreateAuction(other, 100, 10, apitest.LaunchTime+50, apitest.LaunchTime+100)

	var list []*auctions.Auction
	res, status := apitest.HTTPGet(t, ts.URL+"/auctions")
	require.Equal(t, http.StatusOK, status, string(res))
	require.NoError(t, json.Unmarshal(res, &list))
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].Address)
	assert.Equal(t, "Pending", list[1].Status)

	res, _ = apitest.HTTPGet(t, ts.URL+"/auctions?seller="+other.String())
	require.NoError(t, json.Unmarshal(res, &list))
	require.Len(t, list, 1)
	assert.Equal(t, other, list[0].Seller)

	res, _ = apitest.HTTPGet(t, ts.URL+"/auctions?offset=1&limit=5")
	require.NoError(t, json.Unmarshal(res, &list))
	assert.Len(t, list, 1)

	_, status = apitest.HTTPGet(t, ts.URL+"/auctions?limit=x")
	assert.Equal(t, http.StatusBadRequest, status)

	a := list[0]
	res, status = apitest.HTTPGet(t, ts.URL+"/auctions/by-asset/"+a.AssetContract.String()+"/"+(*big.Int)(a.TokenID).String())
	require.Equal(t, http.StatusOK, status, string(res))

	_, status = apitest.HTTPGet(t, ts.URL+"/auctions/"+meter.BytesToAddress([]byte("nowhere")).String())
	assert.Equal(t, http.StatusNotFound, status)
	_, status = apitest.HTTPGet(t, ts.URL+"/auctions/by-asset/"+a.AssetContract.String()+"/999")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateRejected(t *testing.T) {
	node, ts := newServer(t)
	seller := apitest.Account(1)
	id := node.Mint(seller)
	req := map[string]interface{}{
		"origin":        apitest.Account(2),
		"assetContract": meter.NFTModuleAddr,
		"tokenId":       id.String(),
		"reservePrice":  "100",
		"minIncrement":  "10",
		"startTime":     apitest.LaunchTime,
		"endTime":       apitest.LaunchTime + 100,
	}
	res, status := apitest.HTTPPost(t, ts.URL+"/auctions", req)
	assert.Equal(t, http.StatusForbidden, status, string(res))

	req["origin"] = seller
	req["endTime"] = apitest.LaunchTime
	_, status = apitest.HTTPPost(t, ts.URL+"/auctions", req)
	assert.Equal(t, http.StatusBadRequest, status)

	req["endTime"] = apitest.LaunchTime + 100
	req["denomination"] = "bogus"
	_, status = apitest.HTTPPost(t, ts.URL+"/auctions", req)
	assert.Equal(t, http.StatusBadRequest, status)

	req["denomination"] = "oracle"
	req["paymentToken"] = meter.BytesToAddress([]byte("unpriced"))
	req["paymentDecimals"] = 6
	res, status = apitest.HTTPPost(t, ts.URL+"/auctions", req)
	assert.Equal(t, http.StatusBadGateway, status, string(res))
}

func TestConfig(t *testing.T) {
	_, ts := newServer(t)

	res, status := apitest.HTTPGet(t, ts.URL+"/auctions/config")
	require.Equal(t, http.StatusOK, status)
	var cfg auctions.Config
	require.NoError(t, json.Unmarshal(res, &cfg))
	assert.Equal(t, uint64(0), cfg.FeeBps)
	assert.Equal(t, apitest.Owner(), cfg.FeeRecipient)
	assert.Equal(t, uint64(300), cfg.Extension)

	update := map[string]interface{}{
		"origin":          apitest.Account(1),
		"feeBps":          250,
		"antiSnipeWindow": 60,
		"extension":       60,
		"startTolerance":  60,
	}
	_, status = apitest.HTTPPost(t, ts.URL+"/auctions/config", update)
	assert.Equal(t, http.StatusForbidden, status)

	update["origin"] = apitest.Owner()
	res, status = apitest.HTTPPost(t, ts.URL+"/auctions/config", update)
	require.Equal(t, http.StatusOK, status, string(res))

	res, _ = apitest.HTTPGet(t, ts.URL+"/auctions/config")
	require.NoError(t, json.Unmarshal(res, &cfg))
	assert.Equal(t, uint64(250), cfg.FeeBps)
	assert.Equal(t, uint64(60), cfg.AntiSnipeWindow)
}
