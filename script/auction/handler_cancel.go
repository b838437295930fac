// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// Cancel returns the asset to the seller. Only the seller may cancel, and
// only while no bid has been accepted and the auction has not ended.
func (a *Auction) Cancel(env *setypes.ScriptEnv) error {
	rec, err := a.load()
	if err != nil {
		return err
	}
	status := rec.StatusAt(env.Now())
	if status.IsTerminal() {
		return errors.WithMessagef(ErrAlreadySettled, "status %v", status)
	}
	if env.Origin() != rec.Seller {
		return errors.WithMessagef(ErrNotSeller, "caller %v", env.Origin())
	}
	if rec.BidCount > 0 {
		return errors.WithMessagef(ErrBidExists, "%d bids", rec.BidCount)
	}
	if status == StatusEnded {
		return errors.WithMessagef(ErrNotCancellable, "status %v", status)
	}

	reg, err := env.GetAssetRegistry(rec.Asset.Contract)
	if err != nil {
		return err
	}
	if err := reg.TransferFrom(env, a.addr, a.addr, rec.Seller, rec.Asset.TokenID); err != nil {
		return errors.WithMessagef(meter.ErrTransferFailed, "asset %v to %v: %v", rec.Asset, rec.Seller, err)
	}

	rec.Status = StatusCancelled
	a.set(rec)
	log.Info("auction cancelled", "auction", a.addr, "seller", rec.Seller)
	if err := env.EmitEvent(a.addr, AuctionCancelledEvent, []meter.Bytes32{addressTopic(rec.Seller)}, []interface{}{}); err != nil {
		return err
	}
	return a.state.Err()
}

// Withdraw pays the caller what was credited to it after a refused payment.
// The credit is kept if the payment is refused again.
func (a *Auction) Withdraw(env *setypes.ScriptEnv) error {
	rec, err := a.load()
	if err != nil {
		return err
	}
	caller := env.Origin()
	amount := a.PendingWithdrawal(caller)
	if amount.Sign() == 0 {
		return errors.WithMessagef(ErrNothingToWithdraw, "account %v", caller)
	}
	if err := env.Push(rec.PaymentToken, a.addr, caller, amount); err != nil {
		return err
	}
	a.setPendingWithdrawal(caller, new(big.Int))
	log.Info("withdrawn", "auction", a.addr, "account", caller, "amount", amount)
	if err := env.EmitEvent(a.addr, WithdrawnEvent, []meter.Bytes32{addressTopic(caller)}, []interface{}{amount}); err != nil {
		return err
	}
	return a.state.Err()
}
