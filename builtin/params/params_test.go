// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/stretchr/testify/assert"
)

func TestParamsGetSet(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	setv := big.NewInt(10)
	key := meter.BytesToBytes32([]byte("key"))
	p := New(meter.BytesToAddress([]byte("par")), st)
	p.Set(key, setv)

	getv := p.Get(key)
	assert.Equal(t, setv, getv)

	assert.Nil(t, st.Err())
}

func TestParamsUint64(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	key := meter.BytesToBytes32([]byte("window"))
	p := New(meter.BytesToAddress([]byte("par")), st)

	assert.Equal(t, uint64(300), p.GetUint64(key, 300))
	p.SetUint64(key, 0)
	assert.Equal(t, uint64(0), p.GetUint64(key, 300))
	p.SetUint64(key, 42)
	assert.Equal(t, uint64(42), p.GetUint64(key, 300))
	assert.Nil(t, st.Err())
}

func TestParamsAddress(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	key := meter.BytesToBytes32([]byte("recipient"))
	addr := meter.BytesToAddress([]byte("treasury"))
	p := New(meter.BytesToAddress([]byte("par")), st)

	assert.True(t, p.GetAddress(key).IsZero())
	p.SetAddress(key, addr)
	assert.Equal(t, addr, p.GetAddress(key))
}
