// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nft implements a native ERC-721 style collection.
package nft

import (
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "nft")

var (
	metaKey   = meter.Blake2b([]byte("collection-meta"))
	nextIDKey = meter.Blake2b([]byte("next-token-id"))
)

func ownerKey(id *big.Int) meter.Bytes32    { return meter.Blake2b([]byte("owner"), id.Bytes()) }
func approvedKey(id *big.Int) meter.Bytes32 { return meter.Blake2b([]byte("approved"), id.Bytes()) }
func uriKey(id *big.Int) meter.Bytes32      { return meter.Blake2b([]byte("uri"), id.Bytes()) }
func balanceKey(owner meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("balance"), owner.Bytes())
}
func operatorKey(owner, operator meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("operator"), owner.Bytes(), operator.Bytes())
}

var (
	ErrAlreadyDeployed = meter.NewError(meter.KindInvalidState, "collection already deployed")
	ErrNotDeployed     = meter.NewError(meter.KindInvalidState, "collection not deployed")
	ErrNotMinter       = meter.NewError(meter.KindUnauthorized, "caller is not the minter")
	ErrNotAuthorized   = meter.NewError(meter.KindUnauthorized, "caller is not owner nor approved")
	ErrNonexistent     = meter.NewError(meter.KindValidationFailure, "nonexistent token")
	ErrWrongOwner      = meter.NewError(meter.KindValidationFailure, "from is not the owner")
	ErrZeroAddress     = meter.NewError(meter.KindValidationFailure, "zero address")
	ErrSelfApproval    = meter.NewError(meter.KindValidationFailure, "approval to current owner")
)

// Meta describes a collection.
type Meta struct {
	Name   string
	Symbol string
	Minter meter.Address
}

// NFT binder of a collection at addr.
type NFT struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *NFT {
	return &NFT{addr, state}
}

// Resolve binds the collection at addr if one is deployed there.
func Resolve(addr meter.Address, st *state.State) (setypes.AssetRegistry, bool) {
	n := New(addr, st)
	if !n.Exists() {
		return nil, false
	}
	return n, true
}

func (n *NFT) Address() meter.Address { return n.addr }

// Deploy creates the collection; minter is the only account allowed to mint.
func (n *NFT) Deploy(name, symbol string, minter meter.Address) error {
	if n.Exists() {
		return ErrAlreadyDeployed
	}
	if minter.IsZero() {
		return ErrZeroAddress
	}
	meta := &Meta{Name: name, Symbol: symbol, Minter: minter}
	n.state.EncodeStorage(n.addr, metaKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(meta)
	})
	return n.state.Err()
}

func (n *NFT) Meta() (meta *Meta) {
	n.state.DecodeStorage(n.addr, metaKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		meta = &Meta{}
		return rlp.DecodeBytes(raw, meta)
	})
	return
}

func (n *NFT) Exists() bool { return n.Meta() != nil }

func (n *NFT) Name() string {
	if m := n.Meta(); m != nil {
		return m.Name
	}
	return ""
}

func (n *NFT) Symbol() string {
	if m := n.Meta(); m != nil {
		return m.Symbol
	}
	return ""
}

// Mint creates the next token for to and returns its id, starting at 1.
func (n *NFT) Mint(env *setypes.ScriptEnv, to meter.Address, tokenURI string) (*big.Int, error) {
	meta := n.Meta()
	if meta == nil {
		return nil, ErrNotDeployed
	}
	if env.Origin() != meta.Minter {
		return nil, errors.WithMessagef(ErrNotMinter, "caller %v", env.Origin())
	}
	if to.IsZero() {
		return nil, ErrZeroAddress
	}
	id := new(big.Int).Add(n.getBig(nextIDKey), big.NewInt(1))
	n.setBig(nextIDKey, id)
	n.setAddress(ownerKey(id), to)
	n.setBig(balanceKey(to), new(big.Int).Add(n.getBig(balanceKey(to)), big.NewInt(1)))
	if tokenURI != "" {
		n.state.EncodeStorage(n.addr, uriKey(id), func() ([]byte, error) {
			return rlp.EncodeToBytes(tokenURI)
		})
	}
	if err := n.emitTransfer(env, meter.ZeroAddress, to, id); err != nil {
		return nil, err
	}
	log.Debug("minted", "collection", n.addr, "id", id, "to", to)
	return id, nil
}

// TotalMinted returns the highest id minted so far.
func (n *NFT) TotalMinted() *big.Int {
	return n.getBig(nextIDKey)
}

func (n *NFT) OwnerOf(id *big.Int) (meter.Address, error) {
	owner := n.getAddress(ownerKey(id))
	if owner.IsZero() {
		return owner, errors.WithMessagef(ErrNonexistent, "token %v", id)
	}
	return owner, nil
}

func (n *NFT) BalanceOf(owner meter.Address) *big.Int {
	return n.getBig(balanceKey(owner))
}

func (n *NFT) TokenURI(id *big.Int) (uri string, err error) {
	if _, err = n.OwnerOf(id); err != nil {
		return
	}
	n.state.DecodeStorage(n.addr, uriKey(id), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &uri)
	})
	return
}

// Approve lets to transfer the token; the caller must own it or be an operator of the owner.
func (n *NFT) Approve(env *setypes.ScriptEnv, to meter.Address, id *big.Int) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if to == owner {
		return ErrSelfApproval
	}
	caller := env.Origin()
	if caller != owner && !n.IsApprovedForAll(owner, caller) {
		return errors.WithMessagef(ErrNotAuthorized, "caller %v", caller)
	}
	n.setAddress(approvedKey(id), to)
	return env.EmitEvent(n.addr, ApprovalEvent, []meter.Bytes32{addressTopic(owner), addressTopic(to), meter.BytesToBytes32(id.Bytes())}, []interface{}{})
}

func (n *NFT) GetApproved(id *big.Int) (meter.Address, error) {
	if _, err := n.OwnerOf(id); err != nil {
		return meter.ZeroAddress, err
	}
	return n.getAddress(approvedKey(id)), nil
}

// SetApprovalForAll toggles operator rights of operator over all the caller's tokens.
func (n *NFT) SetApprovalForAll(env *setypes.ScriptEnv, operator meter.Address, approved bool) error {
	caller := env.Origin()
	if operator.IsZero() || operator == caller {
		return ErrZeroAddress
	}
	n.state.EncodeStorage(n.addr, operatorKey(caller, operator), func() ([]byte, error) {
		if !approved {
			return nil, nil
		}
		return rlp.EncodeToBytes(true)
	})
	return env.EmitEvent(n.addr, ApprovalForAllEvent, []meter.Bytes32{addressTopic(caller), addressTopic(operator)}, []interface{}{approved})
}

func (n *NFT) IsApprovedForAll(owner, operator meter.Address) (approved bool) {
	n.state.DecodeStorage(n.addr, operatorKey(owner, operator), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &approved)
	})
	return
}

// IsApprovedOrOwner reports whether spender may transfer the token.
func (n *NFT) IsApprovedOrOwner(spender meter.Address, id *big.Int) bool {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return false
	}
	if spender == owner || n.IsApprovedForAll(owner, spender) {
		return true
	}
	return n.getAddress(approvedKey(id)) == spender
}

// TransferFrom moves the token from -> to on behalf of spender and clears
// its single approval.
func (n *NFT) TransferFrom(env *setypes.ScriptEnv, spender, from, to meter.Address, id *big.Int) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != from {
		return errors.WithMessagef(ErrWrongOwner, "token %v owned by %v", id, owner)
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	if !n.IsApprovedOrOwner(spender, id) {
		return errors.WithMessagef(ErrNotAuthorized, "spender %v", spender)
	}
	n.setAddress(approvedKey(id), meter.ZeroAddress)
	n.setBig(balanceKey(from), new(big.Int).Sub(n.getBig(balanceKey(from)), big.NewInt(1)))
	n.setBig(balanceKey(to), new(big.Int).Add(n.getBig(balanceKey(to)), big.NewInt(1)))
	n.setAddress(ownerKey(id), to)
	return n.emitTransfer(env, from, to, id)
}

func (n *NFT) emitTransfer(env *setypes.ScriptEnv, from, to meter.Address, id *big.Int) error {
	return env.EmitEvent(n.addr, TransferEvent, []meter.Bytes32{addressTopic(from), addressTopic(to), meter.BytesToBytes32(id.Bytes())}, []interface{}{})
}

func (n *NFT) getAddress(key meter.Bytes32) (addr meter.Address) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (n *NFT) setAddress(key meter.Bytes32, addr meter.Address) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		if addr.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

func (n *NFT) getBig(key meter.Bytes32) (value *big.Int) {
	value = new(big.Int)
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, value)
	})
	return
}

func (n *NFT) setBig(key meter.Bytes32, value *big.Int) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		if value.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr.Bytes())
}
