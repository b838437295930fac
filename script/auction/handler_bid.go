// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"time"

	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// Bid places the payment attached to the call as a bid of the caller.
//
// The bid must be strictly above the current highest bid in payment units,
// and its value must reach the reserve price and, once a bid exists, the
// highest value plus the minimum increment. For oracle denominated auctions
// both values are normalized with a single price reading.
func (a *Auction) Bid(env *setypes.ScriptEnv) (err error) {
	start := time.Now()
	defer func() {
		log.Debug("Bid completed", "auction", a.addr, "err", err, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	rec, err := a.load()
	if err != nil {
		return err
	}
	now := env.Now()
	switch status := rec.StatusAt(now); status {
	case StatusPending:
		return errors.WithMessagef(ErrNotYetStarted, "starts at %d, now %d", rec.StartTime, now)
	case StatusActive:
	default:
		return errors.WithMessagef(ErrAuctionEnded, "status %v", status)
	}

	bidder := env.Origin()
	if bidder == rec.Seller {
		return ErrSellerBid
	}
	amount := env.GetTxCtx().GetValue()
	if amount.Sign() <= 0 || amount.Cmp(rec.HighestBid) <= 0 {
		return errors.WithMessagef(ErrBidTooLow, "%v does not exceed highest bid %v", amount, rec.HighestBid)
	}

	value, highestValue := new(big.Int).Set(amount), new(big.Int).Set(rec.HighestBid)
	if rec.Denomination == DenomOracle {
		price, err := oracle.New(rec.Oracle, env.GetState()).GetPrice(env, rec.PaymentToken)
		if err != nil {
			return errors.WithMessage(err, "normalize bid")
		}
		value = oracle.ToReference(price, amount, rec.PaymentDecimals)
		highestValue = oracle.ToReference(price, rec.HighestBid, rec.PaymentDecimals)
	}
	threshold := new(big.Int).Set(rec.ReservePrice)
	if rec.BidCount > 0 {
		if next := new(big.Int).Add(highestValue, rec.MinIncrement); next.Cmp(threshold) > 0 {
			threshold = next
		}
	}
	if value.Cmp(threshold) < 0 {
		return errors.WithMessagef(ErrBidTooLow, "value %v below minimum %v", value, threshold)
	}

	// escrow the new bid before releasing the previous one
	if err := env.Pull(rec.PaymentToken, bidder, a.addr, amount); err != nil {
		return err
	}
	if rec.BidCount > 0 {
		if err := a.payOut(env, rec, rec.HighestBidder, rec.HighestBid); err != nil {
			return err
		}
	}

	rec.HighestBid = new(big.Int).Set(amount)
	rec.HighestBidValue = value
	rec.HighestBidder = bidder
	rec.BidCount++
	rec.Status = StatusActive

	prevEnd := rec.EndTime
	if rec.Terms.Extension > 0 && rec.EndTime-now <= rec.Terms.AntiSnipeWindow {
		rec.EndTime += rec.Terms.Extension
	}
	a.set(rec)

	if err := env.EmitEvent(a.addr, BidAcceptedEvent, []meter.Bytes32{addressTopic(bidder)}, []interface{}{amount, value, rec.EndTime}); err != nil {
		return err
	}
	if rec.EndTime != prevEnd {
		log.Info("end time extended", "auction", a.addr, "from", prevEnd, "to", rec.EndTime)
		if err := env.EmitEvent(a.addr, EndTimeExtendedEvent, nil, []interface{}{prevEnd, rec.EndTime}); err != nil {
			return err
		}
	}
	log.Info("bid accepted", "auction", a.addr, "bidder", bidder, "amount", amount, "value", value)
	return a.state.Err()
}

// payOut pushes amount to recipient. A refused payment is credited to the
// withdrawal ledger of recipient instead, so the caller never fails on it.
func (a *Auction) payOut(env *setypes.ScriptEnv, rec *Record, recipient meter.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	err := env.Push(rec.PaymentToken, a.addr, recipient, amount)
	if err == nil {
		return nil
	}
	if !errors.Is(err, meter.ErrTransferFailed) {
		return err
	}
	credited := new(big.Int).Add(a.PendingWithdrawal(recipient), amount)
	a.setPendingWithdrawal(recipient, credited)
	log.Warn("payment refused, credited for withdrawal", "auction", a.addr, "recipient", recipient, "amount", amount, "err", err)
	return env.EmitEvent(a.addr, FundsCreditedEvent, []meter.Bytes32{addressTopic(recipient)}, []interface{}{amount})
}
