// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/accounts"
	"github.com/meterio/meter-auction/api/auctions"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/api/nft"
	"github.com/meterio/meter-auction/api/node"
	"github.com/meterio/meter-auction/api/oracle"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/transfers"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
)

// New return api router
func New(rt *runtime.Runtime, reporters map[meter.Address]*feed.Reported, network, version string, allowedOrigins string) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	accounts.New(rt).
		Mount(router, "/accounts")
	auctions.New(rt).
		Mount(router, "/auctions")
	oracle.New(rt, reporters).
		Mount(router, "/oracle")
	nft.New(rt).
		Mount(router, "/nft")
	transactions.New(rt).
		Mount(router, "/transactions")
	events.New(rt.LogDB()).
		Mount(router, "/logs/event")
	transfers.New(rt.LogDB()).
		Mount(router, "/logs/transfer")
	node.New(rt, network, version).
		Mount(router, "/node")
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type", "x-request-id"}),
			handlers.ExposedHeaders([]string{"x-request-id", "x-error-kind"}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
