// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/api/oracle"
	"github.com/meterio/meter-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*apitest.Node, *httptest.Server) {
	node := apitest.NewNode(t)
	router := mux.NewRouter()
	oracle.New(node.Runtime, node.Genesis.Feeds()).Mount(router, "/oracle")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return node, ts
}

func TestGetOracle(t *testing.T) {
	_, ts := newServer(t)
	res, status := apitest.HTTPGet(t, ts.URL+"/oracle")
	require.Equal(t, http.StatusOK, status)
	var info oracle.Info
	require.NoError(t, json.Unmarshal(res, &info))
	assert.Equal(t, meter.OracleModuleAddr, info.Address)
	assert.Equal(t, apitest.Owner(), info.Owner)
	assert.Equal(t, meter.DefaultStalenessThreshold, info.StalenessThreshold)
}

func TestFeedAndPrice(t *testing.T) {
	node, ts := newServer(t)

	res, status := apitest.HTTPGet(t, ts.URL+"/oracle/feeds/"+meter.NativeToken.String())
	require.Equal(t, http.StatusOK, status, string(res))
	var f oracle.Feed
	require.NoError(t, json.Unmarshal(res, &f))
	assert.Equal(t, uint8(8), f.Decimals)
	assert.Equal(t, "MTR / USD", f.Description)

	res, status = apitest.HTTPGet(t, ts.URL+"/oracle/prices/"+meter.NativeToken.String())
	require.Equal(t, http.StatusOK, status, string(res))
	var p oracle.Price
	require.NoError(t, json.Unmarshal(res, &p))
	assert.Equal(t, "2000", p.Value)
	assert.Equal(t, uint64(1), p.RoundID)

	_, status = apitest.HTTPGet(t, ts.URL+"/oracle/feeds/"+meter.BytesToAddress([]byte("none")).String())
	assert.Equal(t, http.StatusNotFound, status)
	_, status = apitest.HTTPGet(t, ts.URL+"/oracle/prices/"+meter.BytesToAddress([]byte("none")).String())
	assert.Equal(t, http.StatusBadGateway, status)

	// stale after the threshold, fresh again after a new round
	node.Clock.Set(apitest.LaunchTime + meter.DefaultStalenessThreshold + 1)
	_, status = apitest.HTTPGet(t, ts.URL+"/oracle/prices/"+meter.NativeToken.String())
	assert.Equal(t, http.StatusBadGateway, status)

	res, status = apitest.HTTPPost(t, ts.URL+"/oracle/rounds", map[string]interface{}{
		"feed":   f.Feed,
		"answer": "212345000000",
	})
	require.Equal(t, http.StatusOK, status, string(res))
	var round oracle.Round
	require.NoError(t, json.Unmarshal(res, &round))
	assert.Equal(t, uint64(2), round.RoundID)

	res, status = apitest.HTTPGet(t, ts.URL+"/oracle/prices/"+meter.NativeToken.String())
	require.Equal(t, http.StatusOK, status, string(res))
	require.NoError(t, json.Unmarshal(res, &p))
	assert.Equal(t, "2123.45", p.Value)
	assert.Equal(t, int64(212345000000), (*big.Int)(p.Answer).Int64())

	_, status = apitest.HTTPPost(t, ts.URL+"/oracle/rounds", map[string]interface{}{
		"feed":   meter.BytesToAddress([]byte("none")),
		"answer": "1",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdmin(t *testing.T) {
	_, ts := newServer(t)
	token := meter.BytesToAddress([]byte("token"))
	ref := meter.BytesToAddress([]byte("feed-native-usd"))

	_, status := apitest.HTTPPost(t, ts.URL+"/oracle/feeds", map[string]interface{}{
		"origin": apitest.Account(1),
		"asset":  token,
		"feed":   ref,
	})
	assert.Equal(t, http.StatusForbidden, status)

	res, status := apitest.HTTPPost(t, ts.URL+"/oracle/feeds", map[string]interface{}{
		"origin": apitest.Owner(),
		"asset":  token,
		"feed":   ref,
	})
	require.Equal(t, http.StatusOK, status, string(res))
	_, status = apitest.HTTPGet(t, ts.URL+"/oracle/feeds/"+token.String())
	assert.Equal(t, http.StatusOK, status)

	res, status = apitest.HTTPPost(t, ts.URL+"/oracle/staleness", map[string]interface{}{
		"origin":    apitest.Owner(),
		"threshold": 60,
	})
	require.Equal(t, http.StatusOK, status, string(res))
	res, _ = apitest.HTTPGet(t, ts.URL+"/oracle")
	var info oracle.Info
	require.NoError(t, json.Unmarshal(res, &info))
	assert.Equal(t, uint64(60), info.StalenessThreshold)
}
