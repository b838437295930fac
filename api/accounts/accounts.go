// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) getAccount(addr, token meter.Address) (*Account, error) {
	acc := &Account{Address: addr, Token: token}
	err := a.rt.View(func(st *state.State) error {
		acc.Balance = math.HexOrDecimal256(*st.GetBalance(token, addr))
		return st.Err()
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	token := meter.NativeToken
	if s := req.URL.Query().Get("token"); s != "" {
		if token, err = meter.ParseAddress(s); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "token"))
		}
	}
	acc, err := a.getAccount(addr, token)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
