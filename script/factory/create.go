// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"math/big"

	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// CreateParams are the seller supplied terms of a new auction.
type CreateParams struct {
	Asset           auction.Asset
	PaymentToken    meter.Address
	PaymentDecimals uint8
	Denomination    auction.Denomination
	Oracle          meter.Address
	ReservePrice    *big.Int
	MinIncrement    *big.Int
	StartTime       uint64
	EndTime         uint64
}

type createdData struct {
	Contract     meter.Address
	TokenID      *big.Int
	PaymentToken meter.Address
	ReservePrice *big.Int
	MinIncrement *big.Int
	StartTime    uint64
	EndTime      uint64
	Denomination uint8
}

// CreateAuction clones the implementation for a new auction, escrows the
// asset into the clone and registers it. The caller must own the asset or be
// approved for it; the current owner becomes the seller.
func (f *Factory) CreateAuction(env *setypes.ScriptEnv, p *CreateParams) (meter.Address, error) {
	impl := f.Implementation()
	if impl.IsZero() {
		return meter.Address{}, ErrNotDeployed
	}
	if p.Asset.TokenID == nil {
		return meter.Address{}, errors.WithMessage(auction.ErrInvalidParams, "missing token id")
	}
	cfg := f.Config()
	now := env.Now()
	if p.EndTime <= p.StartTime {
		return meter.Address{}, errors.WithMessagef(ErrInvalidWindow, "end %d <= start %d", p.EndTime, p.StartTime)
	}
	if p.StartTime+cfg.StartTolerance < now {
		return meter.Address{}, errors.WithMessagef(ErrInvalidWindow, "start %d is in the past (now %d)", p.StartTime, now)
	}
	if existing, listed := f.IsListed(p.Asset); listed {
		return meter.Address{}, errors.WithMessagef(ErrAssetAlreadyListed, "%v in %v", p.Asset, existing)
	}

	reg, err := env.GetAssetRegistry(p.Asset.Contract)
	if err != nil {
		return meter.Address{}, err
	}
	seller, err := reg.OwnerOf(p.Asset.TokenID)
	if err != nil {
		return meter.Address{}, err
	}
	caller := env.Origin()
	if !reg.IsApprovedOrOwner(caller, p.Asset.TokenID) {
		return meter.Address{}, errors.WithMessagef(ErrNotApproved, "caller %v asset %v", caller, p.Asset)
	}

	decimals := p.PaymentDecimals
	if p.PaymentToken == meter.NativeToken {
		decimals = meter.NativeDecimals
	}
	oracleAddr := p.Oracle
	if p.Denomination == auction.DenomOracle {
		if oracleAddr.IsZero() {
			oracleAddr = meter.OracleModuleAddr
		}
		entry := oracle.New(oracleAddr, env.GetState()).PriceFeed(p.PaymentToken)
		if entry.IsZero() {
			return meter.Address{}, errors.WithMessagef(ErrFeedNotRegistered, "token %v oracle %v", p.PaymentToken, oracleAddr)
		}
	} else {
		oracleAddr = meter.Address{}
	}

	clone := f.nextCloneAddress()
	err = auction.New(clone, env.GetState()).Initialize(env, &auction.InitParams{
		Implementation:  impl,
		Factory:         f.addr,
		Seller:          seller,
		Asset:           p.Asset,
		PaymentToken:    p.PaymentToken,
		PaymentDecimals: decimals,
		Denomination:    p.Denomination,
		Oracle:          oracleAddr,
		ReservePrice:    p.ReservePrice,
		MinIncrement:    p.MinIncrement,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		Terms: auction.Terms{
			AntiSnipeWindow: cfg.AntiSnipeWindow,
			Extension:       cfg.Extension,
			FeeBps:          cfg.FeeBps,
			FeeRecipient:    cfg.FeeRecipient,
		},
	})
	if err != nil {
		return meter.Address{}, err
	}
	if err := reg.TransferFrom(env, caller, seller, clone, p.Asset.TokenID); err != nil {
		return meter.Address{}, errors.WithMessagef(meter.ErrTransferFailed, "escrow %v: %v", p.Asset, err)
	}
	f.record(seller, p.Asset, clone)

	log.Info("auction created", "auction", clone, "seller", seller, "asset", p.Asset, "start", p.StartTime, "end", p.EndTime)
	err = env.EmitEvent(f.addr, AuctionCreatedEvent, []meter.Bytes32{addressTopic(clone), addressTopic(seller)}, &createdData{
		Contract:     p.Asset.Contract,
		TokenID:      p.Asset.TokenID,
		PaymentToken: p.PaymentToken,
		ReservePrice: p.ReservePrice,
		MinIncrement: p.MinIncrement,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Denomination: uint8(p.Denomination),
	})
	if err != nil {
		return meter.Address{}, err
	}
	return clone, f.state.Err()
}
