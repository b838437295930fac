// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Auctions struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Auctions {
	return &Auctions{rt}
}

func parseUint(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func (a *Auctions) handleListAuctions(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	offset, err := parseUint(query.Get("offset"), 0)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	limit, err := parseUint(query.Get("limit"), defaultLimit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	var seller *meter.Address
	if s := query.Get("seller"); s != "" {
		addr, err := meter.ParseAddress(s)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "seller"))
		}
		seller = &addr
	}

	now := a.rt.Now()
	list := []*Auction{}
	err = a.rt.View(func(st *state.State) error {
		f := factory.New(meter.FactoryModuleAddr, st)
		var addrs []meter.Address
		if seller != nil {
			addrs = f.AuctionsBySeller(*seller)
			if offset >= uint64(len(addrs)) {
				addrs = nil
			} else {
				addrs = addrs[offset:]
			}
			if uint64(len(addrs)) > limit {
				addrs = addrs[:limit]
			}
		} else {
			addrs = f.Auctions(offset, limit)
		}
		for _, addr := range addrs {
			if rec := auction.New(addr, st).Get(); rec != nil {
				list = append(list, convertAuction(addr, rec, now))
			}
		}
		return st.Err()
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (a *Auctions) getAuction(addr meter.Address) (*Auction, error) {
	now := a.rt.Now()
	var result *Auction
	err := a.rt.View(func(st *state.State) error {
		if rec := auction.New(addr, st).Get(); rec != nil {
			result = convertAuction(addr, rec, now)
		}
		return st.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, utils.NotFound(errors.Errorf("no auction at %v", addr))
	}
	return result, nil
}

func (a *Auctions) handleGetAuction(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	result, err := a.getAuction(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (a *Auctions) handleGetAuctionByAsset(w http.ResponseWriter, req *http.Request) error {
	contract, err := meter.ParseAddress(mux.Vars(req)["contract"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "contract"))
	}
	id, ok := new(big.Int).SetString(mux.Vars(req)["tokenId"], 0)
	if !ok {
		return utils.BadRequest(errors.New("tokenId: invalid number"))
	}
	var addr meter.Address
	err = a.rt.View(func(st *state.State) error {
		addr = factory.New(meter.FactoryModuleAddr, st).AuctionByAsset(auction.Asset{Contract: contract, TokenID: id})
		return st.Err()
	})
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return utils.NotFound(errors.Errorf("asset %v#%v was never auctioned", contract, id))
	}
	result, err := a.getAuction(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (a *Auctions) handleCreateAuction(w http.ResponseWriter, req *http.Request) error {
	var cr CreateRequest
	if err := utils.ParseJSON(req.Body, &cr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	body, err := cr.body()
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := transactions.Send(req.Context(), a.rt, cr.Origin, meter.FactoryModuleAddr, nil, body)
	if err != nil {
		return err
	}
	addr, err := meter.ParseAddress(receipt.Output)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &CreateResult{Address: addr, Receipt: receipt})
}

func (a *Auctions) handleAction(op uint32) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		addr, err := meter.ParseAddress(mux.Vars(req)["address"])
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "address"))
		}
		var ar ActionRequest
		if err := utils.ParseJSON(req.Body, &ar); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		var value *big.Int
		if op == auction.OP_BID {
			if ar.Value == nil {
				return utils.BadRequest(errors.New("value: required"))
			}
			value = (*big.Int)(ar.Value)
		}
		receipt, err := transactions.Send(req.Context(), a.rt, ar.Origin, addr, value, &auction.AuctionBody{Opcode: op})
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, receipt)
	}
}

func (a *Auctions) handleGetWithdrawal(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	account, err := meter.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	var amount *big.Int
	err = a.rt.View(func(st *state.State) error {
		amount = auction.New(addr, st).PendingWithdrawal(account)
		return st.Err()
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Withdrawal{Account: account, Amount: hexOrDecimal(amount)})
}

func (a *Auctions) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	var cfg *factory.Config
	err := a.rt.View(func(st *state.State) error {
		cfg = factory.New(meter.FactoryModuleAddr, st).Config()
		return st.Err()
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Config{
		FeeBps:          cfg.FeeBps,
		FeeRecipient:    cfg.FeeRecipient,
		AntiSnipeWindow: cfg.AntiSnipeWindow,
		Extension:       cfg.Extension,
		StartTolerance:  cfg.StartTolerance,
	})
}

func (a *Auctions) handleSetConfig(w http.ResponseWriter, req *http.Request) error {
	var cr ConfigRequest
	if err := utils.ParseJSON(req.Body, &cr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := transactions.Send(req.Context(), a.rt, cr.Origin, meter.FactoryModuleAddr, nil, &factory.FactoryBody{
		Opcode:          factory.OP_SET_CONFIG,
		FeeBps:          cr.FeeBps,
		FeeRecipient:    cr.FeeRecipient,
		AntiSnipeWindow: cr.AntiSnipeWindow,
		Extension:       cr.Extension,
		StartTolerance:  cr.StartTolerance,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (a *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleListAuctions))
	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleCreateAuction))
	sub.Path("/config").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetConfig))
	sub.Path("/config").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetConfig))
	sub.Path("/by-asset/{contract}/{tokenId}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAuctionByAsset))
	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAuction))
	sub.Path("/{address}/withdrawals/{account}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetWithdrawal))
	sub.Path("/{address}/bid").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleAction(auction.OP_BID)))
	sub.Path("/{address}/settle").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleAction(auction.OP_SETTLE)))
	sub.Path("/{address}/cancel").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleAction(auction.OP_CANCEL)))
	sub.Path("/{address}/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleAction(auction.OP_WITHDRAW)))
	sub.Path("/{address}/sync").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleAction(auction.OP_SYNC)))
}
