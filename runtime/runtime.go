// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes calls one at a time against the ledger state.
// Every call is atomic: it either commits all of its effects, indexes its
// events and publishes a receipt, or leaves no trace.
package runtime

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "runtime")

// the key lives outside of the state key space
var headKey = []byte("runtime-head")

// Call is one operation submitted by origin.
type Call struct {
	Origin meter.Address
	To     meter.Address
	Value  *big.Int // payment in the target's payment token
	Nonce  uint64
	Data   []byte // pattern prefixed script data
}

// Head is the position of the last committed call.
type Head struct {
	Seq  uint32
	Time uint64
}

// Clock returns the current unix time in seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Runtime serializes calls against one state.
type Runtime struct {
	mu     sync.RWMutex
	store  kv.GetPutter
	state  *state.State
	logDB  *logdb.LogDB
	engine *script.ScriptEngine
	collab *setypes.Collaborators
	clock  Clock
	head   Head

	receiptFeed event.Feed
	scope       event.SubscriptionScope
}

// New creates a runtime over store. logDB may be nil to skip indexing.
func New(store kv.GetPutter, logDB *logdb.LogDB, collab *setypes.Collaborators, clock Clock) (*Runtime, error) {
	registerMetrics()
	if clock == nil {
		clock = SystemClock
	}
	if collab == nil {
		collab = &setypes.Collaborators{}
	}
	rt := &Runtime{
		store:  store,
		state:  state.New(store),
		logDB:  logDB,
		engine: script.NewScriptEngine(),
		collab: collab,
		clock:  clock,
	}
	raw, err := store.Get(headKey)
	if err != nil && !store.IsNotFound(err) {
		return nil, errors.Wrap(err, "load head")
	}
	if len(raw) > 0 {
		if err := rlp.DecodeBytes(raw, &rt.head); err != nil {
			return nil, errors.Wrap(err, "decode head")
		}
	}
	seqGauge.Set(float64(rt.head.Seq))
	return rt, nil
}

func (rt *Runtime) Engine() *script.ScriptEngine          { return rt.engine }
func (rt *Runtime) LogDB() *logdb.LogDB                   { return rt.logDB }
func (rt *Runtime) Collaborators() *setypes.Collaborators { return rt.collab }

// Head returns the last committed position.
func (rt *Runtime) Head() Head {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.head
}

// Now returns the time the next call would run at.
func (rt *Runtime) Now() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.now()
}

// ledger time never goes backwards
func (rt *Runtime) now() uint64 {
	now := rt.clock()
	if now < rt.head.Time {
		now = rt.head.Time
	}
	return now
}

// Exec runs call and commits its effects.
func (rt *Runtime) Exec(ctx context.Context, call *Call) (*tx.Receipt, error) {
	return rt.exec(ctx, call, true)
}

// Simulate runs call and discards its effects.
func (rt *Runtime) Simulate(ctx context.Context, call *Call) (*tx.Receipt, error) {
	return rt.exec(ctx, call, false)
}

func (rt *Runtime) exec(ctx context.Context, call *Call, commit bool) (receipt *tx.Receipt, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := mclock.Now()
	defer func() {
		execDuration.Observe(time.Duration(mclock.Now() - start).Seconds())
		if commit {
			execCounter.WithLabelValues(resultLabel(err)).Inc()
		}
	}()

	rt.mu.Lock()
	receipt, err = rt.execLocked(ctx, call, commit)
	rt.mu.Unlock()

	if err != nil {
		log.Debug("call failed", "origin", call.Origin, "to", call.To, "err", err)
		return nil, err
	}
	if commit {
		countEvents(receipt.Events)
		rt.receiptFeed.Send(receipt)
	}
	return receipt, nil
}

func (rt *Runtime) execLocked(ctx context.Context, call *Call, commit bool) (*tx.Receipt, error) {
	// the lock may have been contended past the deadline
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := rt.now()
	seq := rt.head.Seq + 1
	txCtx := &xenv.TransactionContext{
		Origin: call.Origin,
		Value:  new(big.Int),
		Time:   now,
		Nonce:  call.Nonce,
		Seq:    seq,
	}
	if call.Value != nil {
		if call.Value.Sign() < 0 {
			return nil, meter.NewError(meter.KindValidationFailure, "negative value")
		}
		txCtx.Value.Set(call.Value)
	}
	txCtx.ID = tx.ID(txCtx.Origin, txCtx.Value, now, txCtx.Nonce, seq)

	checkpoint := rt.state.NewCheckpoint()
	env := setypes.NewScriptEnv(ctx, rt.state, txCtx, call.To, rt.collab)
	out, err := rt.engine.HandleScriptData(env, call.Data, call.To)
	if err == nil {
		err = rt.state.Err()
	}
	if err != nil || !commit {
		rt.state.RevertTo(checkpoint)
		rt.state.ClearErr()
		if err != nil {
			return nil, err
		}
	}

	receipt := &tx.Receipt{
		Seq:       seq,
		Time:      now,
		TxID:      txCtx.ID,
		Origin:    call.Origin,
		Events:    out.GetEvents(),
		Transfers: out.GetTransfers(),
		Output:    out.GetData(),
	}
	if !commit {
		return receipt, nil
	}

	if err := rt.state.Commit(); err != nil {
		rt.state.Discard()
		return nil, errors.Wrap(err, "commit")
	}
	rt.head = Head{Seq: seq, Time: now}
	if err := rt.saveHead(); err != nil {
		return nil, err
	}
	seqGauge.Set(float64(seq))

	if rt.logDB != nil {
		err := rt.logDB.Prepare(uint64(seq), now).
			ForTransaction(txCtx.ID, call.Origin).
			Insert(receipt.Events, receipt.Transfers).
			Commit()
		if err != nil {
			// state is the source of truth, the index only lags
			logdbFailuresCounter.Inc()
			log.Error("index receipt failed", "seq", seq, "err", err)
		}
	}
	return receipt, nil
}

func (rt *Runtime) saveHead() error {
	raw, err := rlp.EncodeToBytes(&rt.head)
	if err != nil {
		return errors.Wrap(err, "encode head")
	}
	return errors.Wrap(rt.store.Put(headKey, raw), "save head")
}

// View runs fn with read access to committed state. fn must not mutate it.
func (rt *Runtime) View(fn func(st *state.State) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(rt.state)
}

// Bootstrap runs fn once on a fresh ledger and commits what it wrote.
// It reports false when the ledger was already initialized.
func (rt *Runtime) Bootstrap(fn func(st *state.State) error) (bool, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.head.Seq > 0 || rt.head.Time > 0 {
		return false, nil
	}
	if err := fn(rt.state); err != nil {
		rt.state.Discard()
		return false, err
	}
	if err := rt.state.Err(); err != nil {
		rt.state.Discard()
		return false, err
	}
	if err := rt.state.Commit(); err != nil {
		rt.state.Discard()
		return false, errors.Wrap(err, "commit bootstrap")
	}
	rt.head.Time = rt.now()
	return true, rt.saveHead()
}

// SubscribeReceipt delivers every committed receipt to ch.
func (rt *Runtime) SubscribeReceipt(ch chan *tx.Receipt) event.Subscription {
	return rt.scope.Track(rt.receiptFeed.Subscribe(ch))
}

// Close ends all subscriptions.
func (rt *Runtime) Close() {
	rt.scope.Close()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := meter.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

func countEvents(events tx.Events) {
	auctionsCreatedCounter.Add(float64(len(events.Filter(factory.AuctionCreatedEvent))))
	bidsAcceptedCounter.Add(float64(len(events.Filter(auction.BidAcceptedEvent))))
	auctionsSettledCounter.Add(float64(len(events.Filter(auction.AuctionSettledEvent))))
}
