// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apitest provides a devnet backed ledger for api tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/meterio/meter-auction/builtin"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/factory"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/tx"
	"github.com/stretchr/testify/require"
)

// LaunchTime of the test ledger.
const LaunchTime = 1000

// Clock is a manually advanced clock.
type Clock struct{ now uint64 }

func (c *Clock) Now() uint64    { return atomic.LoadUint64(&c.now) }
func (c *Clock) Set(now uint64) { atomic.StoreUint64(&c.now, now) }

// Node is a bootstrapped devnet ledger.
type Node struct {
	t         testing.TB
	Runtime   *runtime.Runtime
	LogDB     *logdb.LogDB
	Genesis   *genesis.Genesis
	Feeds     *feed.Registry
	Receivers *setypes.Receivers
	Clock     *Clock

	closeOnce sync.Once
	closers   []func()
}

// Owner is the devnet owner of the oracle, the factory and the collection.
func Owner() meter.Address { return genesis.DevAccounts()[0].Address }

// Account returns the i-th dev account.
func Account(i int) meter.Address { return genesis.DevAccounts()[i].Address }

// NewNode boots a devnet ledger on in-memory stores. The stores are released
// by Close, which also runs as a test cleanup.
func NewNode(t testing.TB) *Node {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		require.NoError(t, err)
	}

	n := &Node{
		t:         t,
		LogDB:     logDB,
		Genesis:   genesis.NewDevnet(LaunchTime),
		Feeds:     feed.NewRegistry(),
		Receivers: setypes.NewReceivers(),
		Clock:     &Clock{now: LaunchTime},
		closers:   []func(){logDB.Close, func() { db.Close() }},
	}
	t.Cleanup(n.Close)
	require.NoError(t, n.Genesis.Register(n.Feeds, n.Receivers))
	n.Runtime, err = runtime.New(db, logDB, &setypes.Collaborators{
		Feeds:     n.Feeds,
		Assets:    nft.Resolve,
		Receivers: n.Receivers,
	}, n.Clock.Now)
	require.NoError(t, err)
	n.closers = append(n.closers, n.Runtime.Close)

	_, err = n.Genesis.Apply(n.Runtime)
	require.NoError(t, err)
	return n
}

// Close stops the runtime and closes both stores, newest first. It is safe
// to call more than once.
func (n *Node) Close() {
	n.closeOnce.Do(func() {
		for i := len(n.closers) - 1; i >= 0; i-- {
			n.closers[i]()
		}
	})
}

// Exec runs body from origin and fails the test on error.
func (n *Node) Exec(origin, to meter.Address, value *big.Int, body interface{}) *tx.Receipt {
	data, err := script.EncodeScriptData(body)
	require.NoError(n.t, err)
	if value == nil {
		value = new(big.Int)
	}
	r, err := n.Runtime.Exec(context.Background(), &runtime.Call{Origin: origin, To: to, Value: value, Data: data})
	require.NoError(n.t, err)
	return r
}

// Mint mints a token of the default collection to owner.
func (n *Node) Mint(to meter.Address) *big.Int {
	r := n.Exec(Owner(), builtin.NFT.Address, nil, &nft.NFTBody{Opcode: nft.OP_MINT, To: to})
	return new(big.Int).SetBytes(r.Output)
}

// CreateAuction lists a freshly minted token of seller with a native reserve
// and returns the auction address.
func (n *Node) CreateAuction(seller meter.Address, reserve, increment int64, start, end uint64) meter.Address {
	id := n.Mint(seller)
	r := n.Exec(seller, meter.FactoryModuleAddr, nil, &factory.FactoryBody{
		Opcode:        factory.OP_CREATE,
		AssetContract: builtin.NFT.Address,
		TokenID:       id,
		ReservePrice:  big.NewInt(reserve),
		MinIncrement:  big.NewInt(increment),
		StartTime:     start,
		EndTime:       end,
	})
	return meter.BytesToAddress(r.Output)
}

// HTTPGet issues a GET and returns body and status.
func HTTPGet(t testing.TB, url string) ([]byte, int) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

// HTTPPost posts obj as JSON and returns body and status.
func HTTPPost(t testing.TB, url string, obj interface{}) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
