// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/builtin"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Oracle struct {
	rt        *runtime.Runtime
	reporters map[meter.Address]*feed.Reported
}

// New creates the oracle resource. reporters are the aggregators accepting
// rounds through the api, keyed by feed reference.
func New(rt *runtime.Runtime, reporters map[meter.Address]*feed.Reported) *Oracle {
	return &Oracle{rt, reporters}
}

func (o *Oracle) handleGetOracle(w http.ResponseWriter, req *http.Request) error {
	var result *Info
	err := o.rt.View(func(st *state.State) error {
		native := builtin.Oracle.Native(st)
		result = &Info{
			Address:            native.Address(),
			Owner:              native.Owner(),
			StalenessThreshold: native.StalenessThreshold(),
		}
		return st.Err()
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (o *Oracle) handleGetFeed(w http.ResponseWriter, req *http.Request) error {
	asset, err := meter.ParseAddress(mux.Vars(req)["asset"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	var entry oracle.FeedEntry
	err = o.rt.View(func(st *state.State) error {
		entry = builtin.Oracle.Native(st).PriceFeed(asset)
		return st.Err()
	})
	if err != nil {
		return err
	}
	if entry.IsZero() {
		return utils.NotFound(errors.Errorf("no feed for %v", asset))
	}
	result := &Feed{Asset: asset, Feed: entry.Feed, Decimals: entry.Decimals}
	if feeds := o.rt.Collaborators().Feeds; feeds != nil {
		if agg, ok := feeds.Resolve(entry.Feed); ok {
			result.Description = agg.Description()
		}
	}
	return utils.WriteJSON(w, result)
}

func (o *Oracle) handleGetPrice(w http.ResponseWriter, req *http.Request) error {
	asset, err := meter.ParseAddress(mux.Vars(req)["asset"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	now := o.rt.Now()
	var price *oracle.Price
	err = o.rt.View(func(st *state.State) error {
		env := setypes.NewScriptEnv(req.Context(), st, xenv.NewTransactionContext(meter.Address{}, now), meter.OracleModuleAddr, o.rt.Collaborators())
		price, err = builtin.Oracle.Native(st).GetPrice(env, asset)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Price{
		Asset:     asset,
		Answer:    (*math.HexOrDecimal256)(price.Answer),
		Decimals:  price.Decimals,
		Value:     decimal.NewFromBigInt(price.Answer, -int32(price.Decimals)).String(),
		UpdatedAt: price.UpdatedAt,
		RoundID:   price.RoundID,
	})
}

func (o *Oracle) handleSetFeed(w http.ResponseWriter, req *http.Request) error {
	var r SetFeedRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := transactions.Send(req.Context(), o.rt, r.Origin, meter.OracleModuleAddr, nil, &oracle.OracleBody{
		Opcode: oracle.OP_SET_FEED,
		Asset:  r.Asset,
		Feed:   r.Feed,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (o *Oracle) handleSetStaleness(w http.ResponseWriter, req *http.Request) error {
	var r SetStalenessRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := transactions.Send(req.Context(), o.rt, r.Origin, meter.OracleModuleAddr, nil, &oracle.OracleBody{
		Opcode:    oracle.OP_SET_STALENESS,
		Threshold: r.Threshold,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (o *Oracle) handleSubmitRound(w http.ResponseWriter, req *http.Request) error {
	var r RoundRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if r.Answer == nil {
		return utils.BadRequest(errors.New("answer: required"))
	}
	reporter, ok := o.reporters[r.Feed]
	if !ok {
		return utils.NotFound(errors.Errorf("feed %v does not accept reports", r.Feed))
	}
	now := o.rt.Now()
	id := reporter.Submit((*big.Int)(r.Answer), now)
	return utils.WriteJSON(w, &Round{Feed: r.Feed, RoundID: id, UpdatedAt: now})
}

func (o *Oracle) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(o.handleGetOracle))
	sub.Path("/feeds").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(o.handleSetFeed))
	sub.Path("/feeds/{asset}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(o.handleGetFeed))
	sub.Path("/prices/{asset}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(o.handleGetPrice))
	sub.Path("/staleness").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(o.handleSetStaleness))
	sub.Path("/rounds").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(o.handleSubmitRound))
}
