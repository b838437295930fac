// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

type NFT struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *NFT {
	return &NFT{rt}
}

func parseContract(req *http.Request) (meter.Address, error) {
	addr, err := meter.ParseAddress(mux.Vars(req)["contract"])
	if err != nil {
		return meter.Address{}, utils.BadRequest(errors.WithMessage(err, "contract"))
	}
	return addr, nil
}

func (n *NFT) handleGetCollection(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	var result *Collection
	err = n.rt.View(func(st *state.State) error {
		c := nft.New(contract, st)
		if meta := c.Meta(); meta != nil {
			result = &Collection{
				Address:     contract,
				Name:        meta.Name,
				Symbol:      meta.Symbol,
				Minter:      meta.Minter,
				TotalMinted: (*math.HexOrDecimal256)(c.TotalMinted()),
			}
		}
		return st.Err()
	})
	if err != nil {
		return err
	}
	if result == nil {
		return utils.NotFound(errors.Errorf("no collection at %v", contract))
	}
	return utils.WriteJSON(w, result)
}

func (n *NFT) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	id, ok := new(big.Int).SetString(mux.Vars(req)["id"], 0)
	if !ok {
		return utils.BadRequest(errors.New("id: invalid number"))
	}
	var result *Token
	err = n.rt.View(func(st *state.State) error {
		c := nft.New(contract, st)
		owner, err := c.OwnerOf(id)
		if err != nil {
			return err
		}
		approved, err := c.GetApproved(id)
		if err != nil {
			return err
		}
		uri, err := c.TokenURI(id)
		if err != nil {
			return err
		}
		result = &Token{
			Contract: contract,
			TokenID:  (*math.HexOrDecimal256)(id),
			Owner:    owner,
			Approved: approved,
			URI:      uri,
		}
		return st.Err()
	})
	if err != nil {
		if errors.Is(err, nft.ErrNonexistent) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, result)
}

func (n *NFT) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	owner, err := meter.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	var balance *big.Int
	err = n.rt.View(func(st *state.State) error {
		balance = nft.New(contract, st).BalanceOf(owner)
		return st.Err()
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Owner: owner, Balance: (*math.HexOrDecimal256)(balance)})
}

func (n *NFT) handleMint(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	var r MintRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := transactions.Send(req.Context(), n.rt, r.Origin, contract, nil, &nft.NFTBody{
		Opcode: nft.OP_MINT,
		To:     r.To,
		URI:    r.URI,
	})
	if err != nil {
		return err
	}
	output, err := hexutil.Decode(receipt.Output)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &MintResult{
		TokenID: (*math.HexOrDecimal256)(new(big.Int).SetBytes(output)),
		Receipt: receipt,
	})
}

func (n *NFT) handleApprove(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	var r ApproveRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if r.TokenID == nil {
		return utils.BadRequest(errors.New("tokenId: required"))
	}
	receipt, err := transactions.Send(req.Context(), n.rt, r.Origin, contract, nil, &nft.NFTBody{
		Opcode:  nft.OP_APPROVE,
		To:      r.To,
		TokenID: (*big.Int)(r.TokenID),
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (n *NFT) handleApprovalForAll(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	var r ApprovalForAllRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := transactions.Send(req.Context(), n.rt, r.Origin, contract, nil, &nft.NFTBody{
		Opcode:   nft.OP_APPROVE_ALL,
		To:       r.Operator,
		Approved: r.Approved,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (n *NFT) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	contract, err := parseContract(req)
	if err != nil {
		return err
	}
	var r TransferRequest
	if err := utils.ParseJSON(req.Body, &r); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if r.TokenID == nil {
		return utils.BadRequest(errors.New("tokenId: required"))
	}
	receipt, err := transactions.Send(req.Context(), n.rt, r.Origin, contract, nil, &nft.NFTBody{
		Opcode:  nft.OP_TRANSFERFROM,
		From:    r.From,
		To:      r.To,
		TokenID: (*big.Int)(r.TokenID),
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (n *NFT) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{contract}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetCollection))
	sub.Path("/{contract}/tokens/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetToken))
	sub.Path("/{contract}/balances/{owner}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetBalance))
	sub.Path("/{contract}/mint").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleMint))
	sub.Path("/{contract}/approve").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleApprove))
	sub.Path("/{contract}/approval-for-all").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleApprovalForAll))
	sub.Path("/{contract}/transfer").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleTransfer))
}
