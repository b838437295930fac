// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
)

// Params binder of a key/value parameter table kept in the storage of addr.
type Params struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get native way to get param.
func (p *Params) Get(key meter.Bytes32) (value *big.Int) {
	p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			value = &big.Int{}
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Has reports whether the param was ever set to a non-zero value.
func (p *Params) Has(key meter.Bytes32) bool {
	return len(p.state.GetRawStorage(p.addr, key)) > 0
}

// Set native way to set param.
func (p *Params) Set(key meter.Bytes32, value *big.Int) {
	p.state.EncodeStorage(p.addr, key, func() ([]byte, error) {
		if value.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}

// GetUint64 returns the param, or def when it is unset.
func (p *Params) GetUint64(key meter.Bytes32, def uint64) uint64 {
	if !p.Has(key) {
		return def
	}
	return p.Get(key).Uint64()
}

// SetUint64 stores v. A zero is stored as an explicit marker so that it is
// not confused with an unset param.
func (p *Params) SetUint64(key meter.Bytes32, v uint64) {
	if v == 0 {
		p.state.SetRawStorage(p.addr, key, zeroMarker)
		return
	}
	p.Set(key, new(big.Int).SetUint64(v))
}

// rlp of an empty byte string decodes into a zero big.Int
var zeroMarker = []byte{0x80}

// GetAddress native way to get an address param.
func (p *Params) GetAddress(key meter.Bytes32) (addr meter.Address) {
	addr = meter.BytesToAddress(p.Get(key).Bytes())
	return
}

// SetAddress native way to set an address param.
func (p *Params) SetAddress(key meter.Bytes32, addr meter.Address) {
	i := big.NewInt(0).SetBytes(addr.Bytes())
	p.Set(key, i)
}
