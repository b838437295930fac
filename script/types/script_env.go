// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

// AssetRegistry is the capability set the auction core consumes from an asset contract.
type AssetRegistry interface {
	OwnerOf(tokenID *big.Int) (meter.Address, error)
	IsApprovedOrOwner(spender meter.Address, tokenID *big.Int) bool
	TransferFrom(env *ScriptEnv, spender, from, to meter.Address, tokenID *big.Int) error
}

// AssetResolver binds the asset contract at the given address, if any.
type AssetResolver func(contract meter.Address, st *state.State) (AssetRegistry, bool)

// Receiver is consulted before pushing funds to an address.
// Returning an error refuses the payment.
type Receiver interface {
	Receive(token, from meter.Address, amount *big.Int) error
}

// ReceiverSet looks up the receiver hook of an address.
type ReceiverSet interface {
	Receiver(addr meter.Address) (Receiver, bool)
}

var errNoAssetRegistry = meter.NewError(meter.KindExternalDependencyFailure, "asset registry not found")

// Collaborators are the off-state services a handler may consult.
type Collaborators struct {
	Feeds     feed.Resolver
	Assets    AssetResolver
	Receivers ReceiverSet
}

// ScriptEnv is the environment of one operation.
type ScriptEnv struct {
	ctx    context.Context
	state  *state.State
	txCtx  *xenv.TransactionContext
	toAddr meter.Address
	collab *Collaborators

	returnData []byte
	transfers  []*tx.Transfer
	events     []*tx.Event
}

func NewScriptEnv(ctx context.Context, state *state.State, txCtx *xenv.TransactionContext, to meter.Address, collab *Collaborators) *ScriptEnv {
	if ctx == nil {
		ctx = context.Background()
	}
	if collab == nil {
		collab = &Collaborators{}
	}
	return &ScriptEnv{
		ctx:        ctx,
		state:      state,
		txCtx:      txCtx,
		toAddr:     to,
		collab:     collab,
		returnData: make([]byte, 0),
		transfers:  make([]*tx.Transfer, 0),
		events:     make([]*tx.Event, 0),
	}
}

func (env *ScriptEnv) Context() context.Context         { return env.ctx }
func (env *ScriptEnv) GetState() *state.State             { return env.state }
func (env *ScriptEnv) GetTxCtx() *xenv.TransactionContext { return env.txCtx }
func (env *ScriptEnv) GetToAddr() meter.Address           { return env.toAddr }
func (env *ScriptEnv) GetFeeds() feed.Resolver            { return env.collab.Feeds }
func (env *ScriptEnv) Now() uint64                        { return env.txCtx.Time }
func (env *ScriptEnv) Origin() meter.Address              { return env.txCtx.Origin }

// GetAssetRegistry resolves the asset contract at addr.
func (env *ScriptEnv) GetAssetRegistry(addr meter.Address) (AssetRegistry, error) {
	if env.collab.Assets != nil {
		if reg, ok := env.collab.Assets(addr, env.state); ok {
			return reg, nil
		}
	}
	return nil, errors.WithMessagef(errNoAssetRegistry, "contract %v", addr)
}

// Pull debits amount of token from the payer into to. The payer has
// authorised the debit by making the call.
func (env *ScriptEnv) Pull(token, from, to meter.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := env.state.Transfer(token, from, to, amount); err != nil {
		return err
	}
	env.AddTransfer(from, to, amount, token)
	return nil
}

// Push pays amount of token from to the recipient. It fails with
// meter.ErrTransferFailed, leaving state untouched, if the recipient refuses.
func (env *ScriptEnv) Push(token, from, to meter.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if env.collab.Receivers != nil {
		if r, ok := env.collab.Receivers.Receiver(to); ok {
			if err := r.Receive(token, from, amount); err != nil {
				return errors.WithMessagef(meter.ErrTransferFailed, "%v refused %v: %v", to, amount, err)
			}
		}
	}
	if err := env.state.Transfer(token, from, to, amount); err != nil {
		return err
	}
	env.AddTransfer(from, to, amount, token)
	return nil
}

func (env *ScriptEnv) SetReturnData(data []byte) {
	env.returnData = data
}
func (env *ScriptEnv) GetReturnData() []byte {
	if len(env.returnData) == 0 {
		return nil
	}
	return env.returnData
}

func (env *ScriptEnv) AddTransfer(sender, recipient meter.Address, amount *big.Int, token meter.Address) {
	env.transfers = append(env.transfers, &tx.Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
		Token:     token,
	})
}

func (env *ScriptEnv) AddEvent(address meter.Address, topics []meter.Bytes32, data []byte) {
	env.events = append(env.events, &tx.Event{
		Address: address,
		Topics:  topics,
		Data:    data,
	})
}

// EmitEvent adds an event with topic0 set to sig, followed by indexed topics,
// and data rlp encoded.
func (env *ScriptEnv) EmitEvent(address meter.Address, sig meter.Bytes32, indexed []meter.Bytes32, data interface{}) error {
	raw, err := rlp.EncodeToBytes(data)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	topics := append([]meter.Bytes32{sig}, indexed...)
	env.AddEvent(address, topics, raw)
	return nil
}

func (env *ScriptEnv) GetTransfers() tx.Transfers {
	return env.transfers
}

func (env *ScriptEnv) GetEvents() tx.Events {
	return env.events
}

func (env *ScriptEnv) GetOutput() *ScriptEngineOutput {
	return &ScriptEngineOutput{
		data:      env.GetReturnData(),
		transfers: env.transfers,
		events:    env.events,
	}
}
