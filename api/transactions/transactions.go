// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"bytes"
	"context"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

// Executor runs calls against the ledger.
type Executor interface {
	Exec(ctx context.Context, call *runtime.Call) (*tx.Receipt, error)
	Simulate(ctx context.Context, call *runtime.Call) (*tx.Receipt, error)
}

// Send encodes body as script data and executes it from origin.
func Send(ctx context.Context, exec Executor, origin, to meter.Address, value *big.Int, body interface{}) (*Receipt, error) {
	data, err := script.EncodeScriptData(body)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if value == nil {
		value = new(big.Int)
	}
	r, err := exec.Exec(ctx, &runtime.Call{Origin: origin, To: to, Value: value, Data: data})
	if err != nil {
		return nil, err
	}
	return ConvertReceipt(r), nil
}

type Transactions struct {
	exec Executor
}

func New(exec Executor) *Transactions {
	return &Transactions{exec}
}

func (t *Transactions) handleSendRawCall(w http.ResponseWriter, req *http.Request) error {
	var raw RawCall
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if raw.Origin.IsZero() {
		return utils.BadRequest(errors.New("origin: required"))
	}
	if len(raw.Data) == 0 {
		return utils.BadRequest(errors.New("data: required"))
	}
	if !bytes.HasPrefix(raw.Data, script.ScriptPattern[:]) {
		return utils.BadRequest(errors.WithMessage(script.ErrPatternMismatch, "data"))
	}
	if _, err := script.DecodeScriptData(raw.Data[len(script.ScriptPattern):]); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "data"))
	}
	call := &runtime.Call{
		Origin: raw.Origin,
		To:     raw.To,
		Value:  new(big.Int),
		Nonce:  raw.Nonce,
		Data:   raw.Data,
	}
	if raw.Value != nil {
		call.Value = (*big.Int)(raw.Value)
	}

	run := t.exec.Exec
	if raw.Simulate {
		run = t.exec.Simulate
	}
	r, err := run(req.Context(), call)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ConvertReceipt(r))
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(t.handleSendRawCall))
}
