// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/accounts"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/genesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccount(t *testing.T) {
	node := apitest.NewNode(t)
	router := mux.NewRouter()
	accounts.New(node.Runtime).Mount(router, "/accounts")
	ts := httptest.NewServer(router)
	defer ts.Close()

	addr := apitest.Account(1)
	get := func(query string) *accounts.Account {
		res, status := apitest.HTTPGet(t, ts.URL+"/accounts/"+addr.String()+query)
		require.Equal(t, http.StatusOK, status, string(res))
		var acc accounts.Account
		require.NoError(t, json.Unmarshal(res, &acc))
		return &acc
	}

	native, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	acc := get("")
	assert.Equal(t, native, (*big.Int)(&acc.Balance))
	assert.True(t, acc.Token.IsZero())

	acc = get("?token=" + genesis.DevUSDC.String())
	assert.Equal(t, int64(1000000000000), (*big.Int)(&acc.Balance).Int64())
	assert.Equal(t, genesis.DevUSDC, acc.Token)

	_, status := apitest.HTTPGet(t, ts.URL+"/accounts/bad")
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = apitest.HTTPGet(t, ts.URL+"/accounts/"+addr.String()+"?token=bad")
	assert.Equal(t, http.StatusBadRequest, status)
}
