// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"time"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// Fee returns the platform fee taken from amount.
func (t *Terms) Fee(amount *big.Int) *big.Int {
	if t.FeeBps == 0 || t.FeeRecipient.IsZero() {
		return new(big.Int)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(t.FeeBps))
	return fee.Quo(fee, new(big.Int).SetUint64(meter.BpsDenominator))
}

// Settle closes an ended auction; anyone may call it. Without bids the asset
// goes back to the seller. Otherwise the asset goes to the highest bidder and
// the escrowed bid, less the fee, to the seller.
//
// A refused asset transfer fails the call so it can be retried; refused
// payments are credited for withdrawal.
func (a *Auction) Settle(env *setypes.ScriptEnv) (err error) {
	start := time.Now()
	defer func() {
		log.Debug("Settle completed", "auction", a.addr, "err", err, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	rec, err := a.load()
	if err != nil {
		return err
	}
	switch status := rec.StatusAt(env.Now()); status {
	case StatusEnded:
	case StatusSettled, StatusCancelled:
		return errors.WithMessagef(ErrAlreadySettled, "status %v", status)
	default:
		return errors.WithMessagef(ErrNotEnded, "ends at %d, now %d", rec.EndTime, env.Now())
	}

	reg, err := env.GetAssetRegistry(rec.Asset.Contract)
	if err != nil {
		return err
	}

	winner := rec.Seller
	if rec.BidCount > 0 {
		winner = rec.HighestBidder
	}
	if err := reg.TransferFrom(env, a.addr, a.addr, winner, rec.Asset.TokenID); err != nil {
		return errors.WithMessagef(meter.ErrTransferFailed, "asset %v to %v: %v", rec.Asset, winner, err)
	}

	fee, proceeds := new(big.Int), new(big.Int)
	if rec.BidCount > 0 {
		fee = rec.Terms.Fee(rec.HighestBid)
		proceeds.Sub(rec.HighestBid, fee)
		if err := a.payOut(env, rec, rec.Terms.FeeRecipient, fee); err != nil {
			return err
		}
		if err := a.payOut(env, rec, rec.Seller, proceeds); err != nil {
			return err
		}
	}

	rec.Status = StatusSettled
	a.set(rec)

	if err := env.EmitEvent(a.addr, AuctionSettledEvent, []meter.Bytes32{addressTopic(winner)}, []interface{}{rec.HighestBid, fee, proceeds}); err != nil {
		return err
	}
	log.Info("auction settled", "auction", a.addr, "winner", winner, "amount", rec.HighestBid, "fee", fee)
	return a.state.Err()
}

// Sync applies pending time transitions; anyone may call it.
func (a *Auction) Sync(env *setypes.ScriptEnv) error {
	rec, err := a.load()
	if err != nil {
		return err
	}
	if status := rec.StatusAt(env.Now()); status != rec.Status {
		log.Debug("auction status synced", "auction", a.addr, "from", rec.Status, "to", status)
		rec.Status = status
		a.set(rec)
	}
	return a.state.Err()
}
