// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	txEvent := &tx.Event{
		Address: meter.BytesToAddress([]byte("addr")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 97, 48},
	}
	other := &tx.Event{
		Address: meter.BytesToAddress([]byte("other")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic9"))},
	}

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, db.Prepare(i, 1000+i).ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin"))).
			Insert(tx.Events{txEvent, other}, nil).Commit())
	}

	limit := 5
	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	addr := meter.BytesToAddress([]byte("addr"))
	es, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   10,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: logdb.DESC,
		CriteriaSet: []*logdb.EventCriteria{
			{Address: &addr},
			{Address: &addr, Topics: [5]*meter.Bytes32{&t0, &t1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, limit, len(es), "limit should be equal")
	assert.Equal(t, uint64(10), es[0].Seq)
	assert.Equal(t, addr, es[0].Address)
	assert.Equal(t, t1, *es[0].Topics[1])
	assert.Nil(t, es[0].Topics[2])

	es, err = db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{Unit: logdb.Time, From: 1090, To: 2000},
	})
	require.NoError(t, err)
	assert.Len(t, es, 20)
	assert.Equal(t, uint32(0), es[0].Index)
	assert.Equal(t, uint32(1), es[1].Index)

	all, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 200)
}

func TestTransfers(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	from := meter.BytesToAddress([]byte("from"))
	to := meter.BytesToAddress([]byte("to"))
	token := meter.BytesToAddress([]byte("token"))
	value := big.NewInt(10)
	count := 100
	for i := 0; i < count; i++ {
		transLog := &tx.Transfer{
			Sender:    from,
			Recipient: to,
			Amount:    value,
		}
		if i%2 == 1 {
			transLog.Token = token
		}
		require.NoError(t, db.Prepare(uint64(i), uint64(i)).ForTransaction(meter.Bytes32{}, from).Insert(nil, tx.Transfers{transLog}).Commit())
	}

	tf := &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{
			{TxOrigin: &from, Recipient: &to},
		},
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   1000,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(count),
		},
		Order: logdb.DESC,
	}
	ts, err := db.FilterTransfers(context.Background(), tf)
	require.NoError(t, err)
	assert.Equal(t, count, len(ts), "transfers searched")
	assert.Equal(t, 0, value.Cmp(ts[0].Amount))

	ts, err = db.FilterTransfers(context.Background(), &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{{Token: &token}},
	})
	require.NoError(t, err)
	assert.Len(t, ts, count/2)
	assert.Equal(t, token, ts[0].Token)
}

func TestCanceledQuery(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterEvents(ctx, &logdb.EventFilter{})
	assert.Error(t, err)
}

func BenchmarkLog(b *testing.B) {
	db, err := logdb.New(filepath.Join(b.TempDir(), "log.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()
	l := &tx.Event{
		Address: meter.BytesToAddress([]byte("addr")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte("data"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch := db.Prepare(uint64(i), uint64(i))
		txBatch := batch.ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin")))
		for j := 0; j < 100; j++ {
			txBatch.Insert(tx.Events{l}, nil)
		}
		if err := batch.Commit(); err != nil {
			b.Fatal(err)
		}
	}
}
