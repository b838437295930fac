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

// InitParams are the immutable terms of an auction.
type InitParams struct {
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
	Terms           Terms
}

func (p *InitParams) validate() error {
	switch {
	case p.Seller.IsZero():
		return errors.WithMessage(ErrInvalidParams, "zero seller")
	case p.Asset.TokenID == nil || p.Asset.TokenID.Sign() < 0:
		return errors.WithMessage(ErrInvalidParams, "invalid token id")
	case p.ReservePrice == nil || p.ReservePrice.Sign() < 0:
		return errors.WithMessage(ErrInvalidParams, "invalid reserve price")
	case p.MinIncrement == nil || p.MinIncrement.Sign() < 0:
		return errors.WithMessage(ErrInvalidParams, "invalid min increment")
	case p.EndTime <= p.StartTime:
		return errors.WithMessagef(ErrInvalidParams, "end %d <= start %d", p.EndTime, p.StartTime)
	case p.Denomination == DenomOracle && p.Oracle.IsZero():
		return errors.WithMessage(ErrInvalidParams, "oracle denomination without oracle")
	case p.Denomination > DenomOracle:
		return errors.WithMessagef(ErrInvalidParams, "denomination %d", p.Denomination)
	case p.Terms.FeeBps > meter.BpsDenominator:
		return errors.WithMessagef(ErrInvalidParams, "fee %d bps", p.Terms.FeeBps)
	}
	return nil
}

// Initialize writes the terms of a fresh instance. It can succeed only once
// per address.
func (a *Auction) Initialize(env *setypes.ScriptEnv, p *InitParams) error {
	if a.Exists() {
		return errors.WithMessagef(ErrAlreadyInitialized, "instance %v", a.addr)
	}
	if err := p.validate(); err != nil {
		return err
	}
	now := env.Now()
	rec := &Record{
		Implementation:  p.Implementation,
		Factory:         p.Factory,
		Seller:          p.Seller,
		Asset:           Asset{Contract: p.Asset.Contract, TokenID: new(big.Int).Set(p.Asset.TokenID)},
		PaymentToken:    p.PaymentToken,
		PaymentDecimals: p.PaymentDecimals,
		Denomination:    p.Denomination,
		Oracle:          p.Oracle,
		ReservePrice:    new(big.Int).Set(p.ReservePrice),
		MinIncrement:    new(big.Int).Set(p.MinIncrement),
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		HighestBid:      new(big.Int),
		HighestBidValue: new(big.Int),
		Status:          StatusPending,
		Terms:           p.Terms,
		CreatedAt:       now,
	}
	if now >= rec.StartTime {
		rec.Status = StatusActive
	}
	a.set(rec)
	log.Debug("auction initialized", "address", a.addr, "record", rec.String())
	return a.state.Err()
}
