// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auction implements the state machine of a single auction instance.
// Every instance lives at its own address and keeps its record, escrowed
// funds and withdrawal ledger there; all instances share this one
// implementation.
package auction

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
)

var log = slog.Default().With("pkg", "auction")

var (
	recordKey = meter.Blake2b([]byte("auction-record"))
)

func withdrawalKey(addr meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("withdrawal"), addr.Bytes())
}

var (
	ErrNotInitialized     = meter.NewError(meter.KindInvalidState, "auction not initialized")
	ErrAlreadyInitialized = meter.NewError(meter.KindInvalidState, "auction already initialized")
	ErrNotYetStarted      = meter.NewError(meter.KindInvalidState, "auction not yet started")
	ErrAuctionEnded       = meter.NewError(meter.KindInvalidState, "auction ended")
	ErrNotEnded           = meter.NewError(meter.KindInvalidState, "auction not ended")
	ErrAlreadySettled     = meter.NewError(meter.KindInvalidState, "auction already settled")
	ErrNotCancellable     = meter.NewError(meter.KindInvalidState, "auction can no longer be cancelled")
	ErrNotSeller          = meter.NewError(meter.KindUnauthorized, "caller is not the seller")
	ErrBidExists          = meter.NewError(meter.KindUnauthorized, "a bid has been accepted")
	ErrSellerBid          = meter.NewError(meter.KindUnauthorized, "seller cannot bid")
	ErrBidTooLow          = meter.NewError(meter.KindValidationFailure, "bid too low")
	ErrInvalidParams      = meter.NewError(meter.KindValidationFailure, "invalid auction parameters")
	ErrNothingToWithdraw  = meter.NewError(meter.KindValidationFailure, "nothing to withdraw")
)

// Status of an auction.
type Status uint8

const (
	StatusPending Status = iota
	StatusActive
	StatusEnded
	StatusSettled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusEnded:
		return "Ended"
	case StatusSettled:
		return "Settled"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Denomination tells how reserve price and increment are expressed.
type Denomination uint8

const (
	DenomNative Denomination = iota // in units of the payment token
	DenomOracle                     // in reference units with meter.ReferenceDecimals
)

func (d Denomination) String() string {
	if d == DenomOracle {
		return "oracle"
	}
	return "native"
}

// Asset references one token of a collection.
type Asset struct {
	Contract meter.Address
	TokenID  *big.Int
}

// Key identifies the asset across auctions.
func (a Asset) Key() meter.Bytes32 {
	id := a.TokenID
	if id == nil {
		id = new(big.Int)
	}
	return meter.Blake2b(a.Contract.Bytes(), meter.BytesToBytes32(id.Bytes()).Bytes())
}

func (a Asset) String() string {
	return fmt.Sprintf("%v#%v", a.Contract, a.TokenID)
}

// Terms are the platform rules snapshotted from the factory at creation.
type Terms struct {
	AntiSnipeWindow uint64 // seconds before end in which a bid extends the deadline
	Extension       uint64 // seconds added by such a bid
	FeeBps          uint64
	FeeRecipient    meter.Address
}

// Record is the persisted state of one auction.
type Record struct {
	Implementation  meter.Address
	Factory         meter.Address
	Seller          meter.Address
	Asset           Asset
	PaymentToken    meter.Address
	PaymentDecimals uint8
	Denomination    Denomination
	Oracle          meter.Address
	ReservePrice    *big.Int
	MinIncrement    *big.Int
	StartTime       uint64
	EndTime         uint64
	HighestBid      *big.Int // in payment token units
	HighestBidValue *big.Int // in the denomination of the reserve price
	HighestBidder   meter.Address
	BidCount        uint64
	Status          Status
	Terms           Terms
	CreatedAt       uint64
}

// StatusAt returns the effective status at now, applying time transitions
// that have not been written yet.
func (r *Record) StatusAt(now uint64) Status {
	if r.Status.IsTerminal() {
		return r.Status
	}
	switch {
	case now >= r.EndTime:
		return StatusEnded
	case now >= r.StartTime:
		return StatusActive
	default:
		return StatusPending
	}
}

func (r *Record) String() string {
	return fmt.Sprintf("Auction{seller:%v asset:%v status:%v reserve:%v(%v) inc:%v start:%d end:%d highest:%v by %v bids:%d}",
		r.Seller, r.Asset, r.Status, r.ReservePrice, r.Denomination, r.MinIncrement, r.StartTime, r.EndTime, r.HighestBid, r.HighestBidder, r.BidCount)
}

// Auction binder of the instance at addr.
type Auction struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *Auction {
	return &Auction{addr, state}
}

func (a *Auction) Address() meter.Address { return a.addr }

// Exists reports whether an auction has been initialized at the address.
func (a *Auction) Exists() bool {
	return len(a.state.GetRawStorage(a.addr, recordKey)) > 0
}

// Get returns the record, or nil if the instance is not initialized.
func (a *Auction) Get() (rec *Record) {
	a.state.DecodeStorage(a.addr, recordKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		rec = &Record{}
		return rlp.DecodeBytes(raw, rec)
	})
	return
}

func (a *Auction) set(rec *Record) {
	a.state.EncodeStorage(a.addr, recordKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(rec)
	})
}

// PendingWithdrawal is the amount credited to addr after a refused payment.
func (a *Auction) PendingWithdrawal(addr meter.Address) (amount *big.Int) {
	amount = new(big.Int)
	a.state.DecodeStorage(a.addr, withdrawalKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, amount)
	})
	return
}

func (a *Auction) setPendingWithdrawal(addr meter.Address, amount *big.Int) {
	a.state.EncodeStorage(a.addr, withdrawalKey(addr), func() ([]byte, error) {
		if amount.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(amount)
	})
}

func (a *Auction) load() (*Record, error) {
	rec := a.Get()
	if err := a.state.Err(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotInitialized
	}
	return rec, nil
}

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr.Bytes())
}
