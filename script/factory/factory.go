// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory deploys auction instances as clones of one implementation
// and keeps the registry of every instance it created.
package factory

import (
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/builtin/params"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "factory")

var (
	ownerKey = meter.Blake2b([]byte("owner"))
	implKey  = meter.Blake2b([]byte("implementation"))
	nonceKey = meter.Blake2b([]byte("clone-nonce"))
	countKey = meter.Blake2b([]byte("auction-count"))
)

func indexKey(i uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("auction"), new(big.Int).SetUint64(i).Bytes())
}

func sellerCountKey(seller meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("seller-count"), seller.Bytes())
}

func sellerIndexKey(seller meter.Address, i uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("seller-auction"), seller.Bytes(), new(big.Int).SetUint64(i).Bytes())
}

func assetKey(asset auction.Asset) meter.Bytes32 {
	key := asset.Key()
	return meter.Blake2b([]byte("asset"), key.Bytes())
}

var (
	ErrAlreadyDeployed    = meter.NewError(meter.KindInvalidState, "factory already deployed")
	ErrNotDeployed        = meter.NewError(meter.KindInvalidState, "factory not deployed")
	ErrNotOwner           = meter.NewError(meter.KindUnauthorized, "caller is not the owner")
	ErrNotApproved        = meter.NewError(meter.KindUnauthorized, "caller is not owner nor approved for the asset")
	ErrAssetAlreadyListed = meter.NewError(meter.KindValidationFailure, "asset already listed")
	ErrInvalidWindow      = meter.NewError(meter.KindValidationFailure, "invalid auction window")
	ErrInvalidTerms       = meter.NewError(meter.KindValidationFailure, "invalid terms")
	ErrFeedNotRegistered  = meter.NewError(meter.KindExternalDependencyFailure, "no price feed for payment token")
)

// Config are the platform rules applied to auctions created from now on.
type Config struct {
	FeeBps          uint64
	FeeRecipient    meter.Address
	AntiSnipeWindow uint64
	Extension       uint64
	StartTolerance  uint64
}

// Factory binder of the auction factory at addr.
type Factory struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *Factory {
	return &Factory{addr, state}
}

func (f *Factory) Address() meter.Address { return f.addr }

func (f *Factory) params() *params.Params {
	return params.New(f.addr, f.state)
}

// Deploy sets the owner and the implementation all clones run.
func (f *Factory) Deploy(owner, implementation meter.Address) error {
	if !f.Owner().IsZero() {
		return ErrAlreadyDeployed
	}
	if owner.IsZero() || implementation.IsZero() {
		return errors.WithMessage(ErrInvalidTerms, "zero owner or implementation")
	}
	f.setAddress(ownerKey, owner)
	f.setAddress(implKey, implementation)
	return f.state.Err()
}

func (f *Factory) Owner() meter.Address          { return f.getAddress(ownerKey) }
func (f *Factory) Implementation() meter.Address { return f.getAddress(implKey) }

// Config returns the current platform rules. The fee recipient defaults to
// the owner.
func (f *Factory) Config() *Config {
	p := f.params()
	cfg := &Config{
		FeeBps:          p.GetUint64(meter.KeyFeeBps, meter.DefaultFeeBps),
		FeeRecipient:    p.GetAddress(meter.KeyFeeRecipient),
		AntiSnipeWindow: p.GetUint64(meter.KeyAntiSnipeWindow, meter.DefaultAntiSnipeWindow),
		Extension:       p.GetUint64(meter.KeyExtension, meter.DefaultExtension),
		StartTolerance:  p.GetUint64(meter.KeyStartTolerance, meter.DefaultStartTolerance),
	}
	if cfg.FeeRecipient.IsZero() {
		cfg.FeeRecipient = f.Owner()
	}
	return cfg
}

// SetConfig replaces the platform rules; owner only.
func (f *Factory) SetConfig(env *setypes.ScriptEnv, cfg *Config) error {
	if err := f.onlyOwner(env); err != nil {
		return err
	}
	if cfg.FeeBps > meter.MaxFeeBps {
		return errors.WithMessagef(ErrInvalidTerms, "fee %d bps above %d", cfg.FeeBps, meter.MaxFeeBps)
	}
	p := f.params()
	p.SetUint64(meter.KeyFeeBps, cfg.FeeBps)
	p.SetAddress(meter.KeyFeeRecipient, cfg.FeeRecipient)
	p.SetUint64(meter.KeyAntiSnipeWindow, cfg.AntiSnipeWindow)
	p.SetUint64(meter.KeyExtension, cfg.Extension)
	p.SetUint64(meter.KeyStartTolerance, cfg.StartTolerance)
	log.Info("factory config updated", "fee", cfg.FeeBps, "recipient", cfg.FeeRecipient, "window", cfg.AntiSnipeWindow, "extension", cfg.Extension)
	if err := env.EmitEvent(f.addr, ConfigUpdatedEvent, nil, cfg); err != nil {
		return err
	}
	return f.state.Err()
}

// TransferOwnership hands the admin role to newOwner.
func (f *Factory) TransferOwnership(env *setypes.ScriptEnv, newOwner meter.Address) error {
	if err := f.onlyOwner(env); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return errors.WithMessage(ErrInvalidTerms, "zero owner")
	}
	prev := f.Owner()
	f.setAddress(ownerKey, newOwner)
	return env.EmitEvent(f.addr, OwnershipTransferredEvent, []meter.Bytes32{addressTopic(prev), addressTopic(newOwner)}, []interface{}{})
}

// Count returns how many auctions were created.
func (f *Factory) Count() uint64 {
	return f.getUint64(countKey)
}

// AuctionAt returns the i-th created auction, zero-based.
func (f *Factory) AuctionAt(i uint64) meter.Address {
	return f.getAddress(indexKey(i))
}

// Auctions returns up to limit auctions in creation order starting at offset.
func (f *Factory) Auctions(offset, limit uint64) []meter.Address {
	count := f.Count()
	out := make([]meter.Address, 0)
	for i := offset; i < count && uint64(len(out)) < limit; i++ {
		out = append(out, f.AuctionAt(i))
	}
	return out
}

// AuctionsBySeller returns every auction created for seller, in creation order.
func (f *Factory) AuctionsBySeller(seller meter.Address) []meter.Address {
	count := f.getUint64(sellerCountKey(seller))
	out := make([]meter.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		out = append(out, f.getAddress(sellerIndexKey(seller, i)))
	}
	return out
}

// AuctionByAsset returns the latest auction created for asset, zero if none.
func (f *Factory) AuctionByAsset(asset auction.Asset) meter.Address {
	return f.getAddress(assetKey(asset))
}

// IsListed reports whether asset has a non-terminal auction.
func (f *Factory) IsListed(asset auction.Asset) (meter.Address, bool) {
	latest := f.AuctionByAsset(asset)
	if latest.IsZero() {
		return latest, false
	}
	rec := auction.New(latest, f.state).Get()
	return latest, rec != nil && !rec.Status.IsTerminal()
}

func (f *Factory) record(seller meter.Address, asset auction.Asset, clone meter.Address) {
	count := f.Count()
	f.setAddress(indexKey(count), clone)
	f.setUint64(countKey, count+1)

	sellerCount := f.getUint64(sellerCountKey(seller))
	f.setAddress(sellerIndexKey(seller, sellerCount), clone)
	f.setUint64(sellerCountKey(seller), sellerCount+1)

	f.setAddress(assetKey(asset), clone)
}

// nextCloneAddress derives the address of the next clone and bumps the nonce.
func (f *Factory) nextCloneAddress() meter.Address {
	nonce := f.getUint64(nonceKey)
	f.setUint64(nonceKey, nonce+1)
	return meter.Address(crypto.CreateAddress(common.Address(f.addr), nonce))
}

func (f *Factory) onlyOwner(env *setypes.ScriptEnv) error {
	owner := f.Owner()
	if owner.IsZero() {
		return ErrNotDeployed
	}
	if env.Origin() != owner {
		return errors.WithMessagef(ErrNotOwner, "caller %v", env.Origin())
	}
	return nil
}

func (f *Factory) getAddress(key meter.Bytes32) (addr meter.Address) {
	f.state.DecodeStorage(f.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (f *Factory) setAddress(key meter.Bytes32, addr meter.Address) {
	f.state.EncodeStorage(f.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(addr)
	})
}

func (f *Factory) getUint64(key meter.Bytes32) (v uint64) {
	f.state.DecodeStorage(f.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func (f *Factory) setUint64(key meter.Bytes32, v uint64) {
	f.state.EncodeStorage(f.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(v)
	})
}

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr.Bytes())
}
