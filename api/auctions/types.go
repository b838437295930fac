// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	"github.com/pkg/errors"
)

type Terms struct {
	AntiSnipeWindow uint64        `json:"antiSnipeWindow"`
	Extension       uint64        `json:"extension"`
	FeeBps          uint64        `json:"feeBps"`
	FeeRecipient    meter.Address `json:"feeRecipient"`
}

// Auction is the JSON view of an auction record. Status is the effective
// status at the ledger time of the query.
type Auction struct {
	Address         meter.Address         `json:"address"`
	Implementation  meter.Address         `json:"implementation"`
	Factory         meter.Address         `json:"factory"`
	Seller          meter.Address         `json:"seller"`
	AssetContract   meter.Address         `json:"assetContract"`
	TokenID         *math.HexOrDecimal256 `json:"tokenId"`
	PaymentToken    meter.Address         `json:"paymentToken"`
	PaymentDecimals uint8                 `json:"paymentDecimals"`
	Denomination    string                `json:"denomination"`
	Oracle          meter.Address         `json:"oracle"`
	ReservePrice    *math.HexOrDecimal256 `json:"reservePrice"`
	MinIncrement    *math.HexOrDecimal256 `json:"minIncrement"`
	StartTime       uint64                `json:"startTime"`
	EndTime         uint64                `json:"endTime"`
	HighestBid      *math.HexOrDecimal256 `json:"highestBid"`
	HighestBidValue *math.HexOrDecimal256 `json:"highestBidValue"`
	HighestBidder   meter.Address         `json:"highestBidder"`
	BidCount        uint64                `json:"bidCount"`
	Status          string                `json:"status"`
	Terms           Terms                 `json:"terms"`
	CreatedAt       uint64                `json:"createdAt"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

func convertAuction(addr meter.Address, rec *auction.Record, now uint64) *Auction {
	return &Auction{
		Address:         addr,
		Implementation:  rec.Implementation,
		Factory:         rec.Factory,
		Seller:          rec.Seller,
		AssetContract:   rec.Asset.Contract,
		TokenID:         hexOrDecimal(rec.Asset.TokenID),
		PaymentToken:    rec.PaymentToken,
		PaymentDecimals: rec.PaymentDecimals,
		Denomination:    rec.Denomination.String(),
		Oracle:          rec.Oracle,
		ReservePrice:    hexOrDecimal(rec.ReservePrice),
		MinIncrement:    hexOrDecimal(rec.MinIncrement),
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		HighestBid:      hexOrDecimal(rec.HighestBid),
		HighestBidValue: hexOrDecimal(rec.HighestBidValue),
		HighestBidder:   rec.HighestBidder,
		BidCount:        rec.BidCount,
		Status:          rec.StatusAt(now).String(),
		Terms: Terms{
			AntiSnipeWindow: rec.Terms.AntiSnipeWindow,
			Extension:       rec.Terms.Extension,
			FeeBps:          rec.Terms.FeeBps,
			FeeRecipient:    rec.Terms.FeeRecipient,
		},
		CreatedAt: rec.CreatedAt,
	}
}

func parseDenomination(s string) (auction.Denomination, error) {
	switch s {
	case "", "native":
		return auction.DenomNative, nil
	case "oracle":
		return auction.DenomOracle, nil
	default:
		return 0, errors.Errorf("unknown denomination %q", s)
	}
}

// CreateRequest lists an asset. Origin must own the asset or be approved for it.
type CreateRequest struct {
	Origin          meter.Address         `json:"origin"`
	AssetContract   meter.Address         `json:"assetContract"`
	TokenID         *math.HexOrDecimal256 `json:"tokenId"`
	PaymentToken    meter.Address         `json:"paymentToken"`
	PaymentDecimals uint8                 `json:"paymentDecimals"`
	Denomination    string                `json:"denomination"`
	Oracle          meter.Address         `json:"oracle"`
	ReservePrice    *math.HexOrDecimal256 `json:"reservePrice"`
	MinIncrement    *math.HexOrDecimal256 `json:"minIncrement"`
	StartTime       uint64                `json:"startTime"`
	EndTime         uint64                `json:"endTime"`
}

func (r *CreateRequest) body() (*factory.FactoryBody, error) {
	if r.TokenID == nil {
		return nil, errors.New("tokenId: required")
	}
	denom, err := parseDenomination(r.Denomination)
	if err != nil {
		return nil, errors.WithMessage(err, "denomination")
	}
	return &factory.FactoryBody{
		Opcode:          factory.OP_CREATE,
		AssetContract:   r.AssetContract,
		TokenID:         (*big.Int)(r.TokenID),
		PaymentToken:    r.PaymentToken,
		PaymentDecimals: r.PaymentDecimals,
		Denomination:    uint8(denom),
		Oracle:          r.Oracle,
		ReservePrice:    (*big.Int)(r.ReservePrice),
		MinIncrement:    (*big.Int)(r.MinIncrement),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
	}, nil
}

type CreateResult struct {
	Address meter.Address         `json:"address"`
	Receipt *transactions.Receipt `json:"receipt"`
}

// ActionRequest drives an existing auction. Value is the bid amount and is
// ignored by the other actions.
type ActionRequest struct {
	Origin meter.Address         `json:"origin"`
	Value  *math.HexOrDecimal256 `json:"value"`
}

type Withdrawal struct {
	Account meter.Address         `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// Config is the JSON form of the factory rules.
type Config struct {
	FeeBps          uint64        `json:"feeBps"`
	FeeRecipient    meter.Address `json:"feeRecipient"`
	AntiSnipeWindow uint64        `json:"antiSnipeWindow"`
	Extension       uint64        `json:"extension"`
	StartTolerance  uint64        `json:"startTolerance"`
}

type ConfigRequest struct {
	Origin meter.Address `json:"origin"`
	Config
}
