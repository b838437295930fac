// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

var (
	log = slog.Default().With("pkg", "oracle")

	ownerKey     = meter.Blake2b([]byte("owner"))
	stalenessKey = meter.Blake2b([]byte("staleness-threshold"))
)

func feedKey(asset meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("feed"), asset.Bytes())
}

var (
	ErrNotOwner           = meter.NewError(meter.KindUnauthorized, "caller is not the owner")
	ErrAlreadyDeployed    = meter.NewError(meter.KindInvalidState, "oracle already deployed")
	ErrNotDeployed        = meter.NewError(meter.KindInvalidState, "oracle not deployed")
	ErrInvalidOwner       = meter.NewError(meter.KindValidationFailure, "invalid owner")
	ErrInvalidThreshold   = meter.NewError(meter.KindValidationFailure, "invalid staleness threshold")
	ErrFeedNotRegistered  = meter.NewError(meter.KindExternalDependencyFailure, "feed not registered")
	ErrStaleOrInvalidFeed = meter.NewError(meter.KindExternalDependencyFailure, "stale or invalid feed")
	ErrFeedUnresolvable   = meter.NewError(meter.KindExternalDependencyFailure, "feed unresolvable")
)

// FeedEntry is the registered feed of an asset.
type FeedEntry struct {
	Feed     meter.Address
	Decimals uint8
}

// IsZero reports whether the entry is absent or disabled.
func (e FeedEntry) IsZero() bool {
	return e.Feed.IsZero()
}

// Price is a validated feed reading.
type Price struct {
	Answer    *big.Int
	Decimals  uint8
	UpdatedAt uint64
	RoundID   uint64
}

func (p *Price) String() string {
	return fmt.Sprintf("Price{%s updatedAt:%d round:%d}", meter.PrettyAmount(p.Answer, p.Decimals), p.UpdatedAt, p.RoundID)
}

// Oracle binder of the price oracle module.
type Oracle struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *Oracle {
	return &Oracle{addr, state}
}

func (o *Oracle) Address() meter.Address { return o.addr }

// Deploy sets the deployer as owner.
func (o *Oracle) Deploy(owner meter.Address) error {
	if !o.Owner().IsZero() {
		return ErrAlreadyDeployed
	}
	if owner.IsZero() {
		return ErrInvalidOwner
	}
	o.setAddress(ownerKey, owner)
	return o.state.Err()
}

func (o *Oracle) Owner() (owner meter.Address) {
	return o.getAddress(ownerKey)
}

// TransferOwnership hands the admin role to newOwner.
func (o *Oracle) TransferOwnership(env *setypes.ScriptEnv, newOwner meter.Address) error {
	prev, err := o.onlyOwner(env)
	if err != nil {
		return err
	}
	if newOwner.IsZero() {
		return ErrInvalidOwner
	}
	o.setAddress(ownerKey, newOwner)
	return env.EmitEvent(o.addr, OwnershipTransferredEvent, []meter.Bytes32{addressTopic(prev), addressTopic(newOwner)}, []interface{}{})
}

// PriceFeed returns the feed registered for asset; zero entry if none.
func (o *Oracle) PriceFeed(asset meter.Address) (entry FeedEntry) {
	o.state.DecodeStorage(o.addr, feedKey(asset), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &entry)
	})
	return
}

// SetPriceFeed registers ref as the feed of asset, overwriting any previous
// one. A zero ref disables the asset.
func (o *Oracle) SetPriceFeed(env *setypes.ScriptEnv, asset, ref meter.Address) error {
	if _, err := o.onlyOwner(env); err != nil {
		return err
	}
	entry := FeedEntry{Feed: ref}
	if !ref.IsZero() {
		var agg interface{ Decimals() uint8 }
		if feeds := env.GetFeeds(); feeds != nil {
			if a, ok := feeds.Resolve(ref); ok {
				agg = a
			}
		}
		if agg == nil {
			return errors.WithMessagef(ErrFeedUnresolvable, "feed %v", ref)
		}
		entry.Decimals = agg.Decimals()
	}
	o.state.EncodeStorage(o.addr, feedKey(asset), func() ([]byte, error) {
		return rlp.EncodeToBytes(&entry)
	})
	log.Info("price feed updated", "asset", asset, "feed", ref, "decimals", entry.Decimals)
	return env.EmitEvent(o.addr, FeedUpdatedEvent, []meter.Bytes32{addressTopic(asset)}, &entry)
}

// StalenessThreshold is the max age in seconds of an acceptable reading.
func (o *Oracle) StalenessThreshold() (secs uint64) {
	o.state.DecodeStorage(o.addr, stalenessKey, func(raw []byte) error {
		if len(raw) == 0 {
			secs = meter.DefaultStalenessThreshold
			return nil
		}
		return rlp.DecodeBytes(raw, &secs)
	})
	return
}

func (o *Oracle) SetStalenessThreshold(env *setypes.ScriptEnv, secs uint64) error {
	if _, err := o.onlyOwner(env); err != nil {
		return err
	}
	if secs == 0 {
		return ErrInvalidThreshold
	}
	o.state.EncodeStorage(o.addr, stalenessKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(secs)
	})
	return env.EmitEvent(o.addr, StalenessThresholdUpdatedEvent, nil, []interface{}{secs})
}

// GetPrice reads the feed of asset once and validates the reading against
// the operation time carried by env.
func (o *Oracle) GetPrice(env *setypes.ScriptEnv, asset meter.Address) (*Price, error) {
	entry := o.PriceFeed(asset)
	if entry.IsZero() {
		return nil, errors.WithMessagef(ErrFeedNotRegistered, "asset %v", asset)
	}
	feeds := env.GetFeeds()
	if feeds == nil {
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "feed %v unreachable", entry.Feed)
	}
	agg, ok := feeds.Resolve(entry.Feed)
	if !ok {
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "feed %v unreachable", entry.Feed)
	}
	round, err := agg.LatestRoundData(env.Context())
	if err != nil {
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "read feed %v: %v", entry.Feed, err)
	}

	now := env.Now()
	switch {
	case round.Answer == nil || round.Answer.Sign() <= 0:
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "non-positive answer %v", round.Answer)
	case round.UpdatedAt == 0:
		return nil, errors.WithMessage(ErrStaleOrInvalidFeed, "round not complete")
	case round.UpdatedAt > now:
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "updated in the future (%d > %d)", round.UpdatedAt, now)
	case now-round.UpdatedAt > o.StalenessThreshold():
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "updated %ds ago", now-round.UpdatedAt)
	case round.AnsweredInRound < round.RoundID:
		return nil, errors.WithMessagef(ErrStaleOrInvalidFeed, "answered in round %d < %d", round.AnsweredInRound, round.RoundID)
	}
	return &Price{
		Answer:    round.Answer,
		Decimals:  entry.Decimals,
		UpdatedAt: round.UpdatedAt,
		RoundID:   round.RoundID,
	}, nil
}

// ToReference converts amount of a token with tokenDecimals into reference
// units with meter.ReferenceDecimals, rounding down.
func ToReference(p *Price, amount *big.Int, tokenDecimals uint8) *big.Int {
	v := new(big.Int).Mul(amount, p.Answer)
	v.Mul(v, meter.Pow10(meter.ReferenceDecimals))
	div := new(big.Int).Mul(meter.Pow10(tokenDecimals), meter.Pow10(p.Decimals))
	return v.Quo(v, div)
}

func (o *Oracle) onlyOwner(env *setypes.ScriptEnv) (meter.Address, error) {
	owner := o.Owner()
	if owner.IsZero() {
		return owner, ErrNotDeployed
	}
	if env.Origin() != owner {
		return owner, errors.WithMessagef(ErrNotOwner, "caller %v", env.Origin())
	}
	return owner, nil
}

func (o *Oracle) getAddress(key meter.Bytes32) (addr meter.Address) {
	o.state.DecodeStorage(o.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (o *Oracle) setAddress(key meter.Bytes32, addr meter.Address) {
	o.state.EncodeStorage(o.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(addr)
	})
}

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr.Bytes())
}
