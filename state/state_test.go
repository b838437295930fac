// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = meter.BytesToAddress([]byte("alice"))
	bob   = meter.BytesToAddress([]byte("bob"))
	usdc  = meter.BytesToAddress([]byte("usdc"))
)

func TestBalances(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	st.AddBalance(meter.NativeToken, alice, big.NewInt(100))
	st.AddBalance(usdc, alice, big.NewInt(7))
	assert.Equal(t, big.NewInt(100), st.GetBalance(meter.NativeToken, alice))
	assert.Equal(t, big.NewInt(7), st.GetBalance(usdc, alice))

	assert.NoError(t, st.Transfer(meter.NativeToken, alice, bob, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), st.GetBalance(meter.NativeToken, alice))
	assert.Equal(t, big.NewInt(40), st.GetBalance(meter.NativeToken, bob))

	err := st.Transfer(usdc, alice, bob, big.NewInt(8))
	assert.ErrorIs(t, err, meter.ErrInsufficientBalance)
	assert.Equal(t, big.NewInt(7), st.GetBalance(usdc, alice))
	assert.Nil(t, st.Err())
}

func TestCheckpointRevert(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)
	key := meter.BytesToBytes32([]byte("key"))

	st.AddBalance(meter.NativeToken, alice, big.NewInt(10))
	st.SetRawStorage(alice, key, []byte{1})

	rev := st.NewCheckpoint()
	st.AddBalance(meter.NativeToken, alice, big.NewInt(5))
	st.SetRawStorage(alice, key, []byte{2})
	st.SetRawStorage(bob, key, []byte{3})
	st.RevertTo(rev)

	assert.Equal(t, big.NewInt(10), st.GetBalance(meter.NativeToken, alice))
	assert.Equal(t, []byte{1}, []byte(st.GetRawStorage(alice, key)))
	assert.Empty(t, st.GetRawStorage(bob, key))
}

func TestCommitPersists(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)
	key := meter.BytesToBytes32([]byte("key"))

	st.AddBalance(usdc, bob, big.NewInt(42))
	st.SetRawStorage(bob, key, []byte("v"))
	require.NoError(t, st.Commit())
	assert.Equal(t, 0, st.Dirty())

	reopened := New(kv)
	assert.Equal(t, big.NewInt(42), reopened.GetBalance(usdc, bob))
	assert.Equal(t, []byte("v"), []byte(reopened.GetRawStorage(bob, key)))

	reopened.SetBalance(usdc, bob, new(big.Int))
	require.NoError(t, reopened.Commit())
	has, err := kv.Has([]byte(balanceKey(usdc, bob)))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDiscard(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)
	st.AddBalance(meter.NativeToken, alice, big.NewInt(1))
	st.Discard()
	assert.Equal(t, 0, st.GetBalance(meter.NativeToken, alice).Sign())
}
