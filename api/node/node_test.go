// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/apitest"
	"github.com/meterio/meter-auction/api/node"
	"github.com/stretchr/testify/assert"
)

func TestNode(t *testing.T) {
	n := apitest.NewNode(t)
	router := mux.NewRouter()
	node.New(n.Runtime, "devnet", "1.0.0-test").Mount(router, "/node")
	ts := httptest.NewServer(router)
	defer ts.Close()

	n.Mint(apitest.Account(1))

	res, _ := apitest.HTTPGet(t, ts.URL+"/node/status")
	var status node.Status
	if err := json.Unmarshal(res, &status); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "devnet", status.Network)
	assert.Equal(t, uint32(1), status.Head.Seq, "one call after bootstrap")
	assert.Equal(t, uint64(apitest.LaunchTime), status.Now)
	assert.Len(t, status.Modules, 4)
	assert.Equal(t, "auction", status.Modules[0].Name)
	assert.NotEmpty(t, status.LogDBDriver)
}
