// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"testing"

	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBacklogPages(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := meter.BytesToAddress([]byte("auction"))
	topic := meter.BytesToBytes32([]byte("bid"))
	ev := &tx.Event{Address: addr, Topics: []meter.Bytes32{topic}}
	other := &tx.Event{Address: meter.BytesToAddress([]byte("other")), Topics: []meter.Bytes32{topic}}

	const perSeq, seqs = 10, 250
	for seq := uint64(1); seq <= seqs; seq++ {
		events := tx.Events{other}
		for i := 0; i < perSeq; i++ {
			events = append(events, ev)
		}
		require.NoError(t, db.Prepare(seq, 1000+seq).ForTransaction(meter.BytesToBytes32([]byte("tx")), addr).
			Insert(events, nil).Commit())
	}

	er := newEventReader(db, &EventFilter{Address: &addr}, 1)
	total, pages := 0, 0
	for {
		msgs, err := er.Backlog(context.Background())
		require.NoError(t, err)
		if len(msgs) == 0 {
			break
		}
		assert.LessOrEqual(t, len(msgs), backlogPage)
		total += len(msgs)
		pages++
	}
	assert.Equal(t, perSeq*seqs, total, "every logged event is replayed")
	assert.Equal(t, 3, pages)
	assert.Equal(t, uint64(seqs), er.last)

	replayed := &tx.Receipt{Seq: seqs, Events: tx.Events{ev}}
	assert.Empty(t, er.Read(replayed))
	live := &tx.Receipt{Seq: seqs + 1, Events: tx.Events{ev, other}}
	assert.Len(t, er.Read(live), 1)
}

func TestEventBacklogLiveOnly(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Prepare(1, 1000).ForTransaction(meter.Bytes32{}, meter.Address{}).
		Insert(tx.Events{{Address: meter.Address{}}}, nil).Commit())

	er := newEventReader(db, &EventFilter{}, 0)
	msgs, err := er.Backlog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
