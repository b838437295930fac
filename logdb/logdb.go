// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes the events and transfers of executed calls in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"log/slog"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			if err := db.Close(); err != nil {
				log.Warn("could not close logdb", "err", err)
			}
		}
	}()
	// a memory db lives per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	if err := db.db.Close(); err != nil {
		log.Warn("could not close logdb", "err", err)
	}
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch for the receipt with sequence seq.
func (db *LogDB) Prepare(seq, time uint64) *Batch {
	return &Batch{
		db:   db.db,
		seq:  seq,
		time: time,
	}
}

const (
	eventColumns    = "seq, eventIndex, time, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data"
	transferColumns = "seq, transferIndex, time, txID, txOrigin, sender, recipient, amount, token"
)

// FilterEvents returns the events matching any criteria of filter. A nil
// filter returns all events in ascending order.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	q := newQuery("event", "eventIndex")
	if filter != nil {
		groups := make([]columns, 0, len(filter.CriteriaSet))
		for _, c := range filter.CriteriaSet {
			groups = append(groups, c.columns())
		}
		q.inRange(filter.Range).anyOf(groups).sorted(filter.Order).paged(filter.Options)
	}
	stmt, args := q.build(eventColumns)
	return queryRows(ctx, db.db, scanEvent, stmt, args...)
}

// FilterTransfers returns the transfers matching any criteria of filter. A
// nil filter returns all transfers in ascending order.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	q := newQuery("transfer", "transferIndex")
	if filter != nil {
		if filter.TxID != nil {
			q.where("txID = ?", filter.TxID.Bytes())
		}
		groups := make([]columns, 0, len(filter.CriteriaSet))
		for _, c := range filter.CriteriaSet {
			groups = append(groups, c.columns())
		}
		q.inRange(filter.Range).anyOf(groups).sorted(filter.Order).paged(filter.Options)
	}
	stmt, args := q.build(transferColumns)
	return queryRows(ctx, db.db, scanTransfer, stmt, args...)
}

func queryRows[T any](ctx context.Context, db *sql.DB, scan func(*sql.Rows) (*T, error), stmt string, args ...interface{}) ([]*T, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		ev                       Event
		txID, origin, addr, data []byte
		topics                   [5][]byte
	)
	if err := rows.Scan(&ev.Seq, &ev.Index, &ev.Time, &txID, &origin, &addr,
		&topics[0], &topics[1], &topics[2], &topics[3], &topics[4], &data); err != nil {
		return nil, err
	}
	ev.TxID = meter.BytesToBytes32(txID)
	ev.TxOrigin = meter.BytesToAddress(origin)
	ev.Address = meter.BytesToAddress(addr)
	ev.Data = data
	for i, topic := range topics {
		if len(topic) > 0 {
			h := meter.BytesToBytes32(topic)
			ev.Topics[i] = &h
		}
	}
	return &ev, nil
}

func scanTransfer(rows *sql.Rows) (*Transfer, error) {
	var (
		tr                                             Transfer
		txID, origin, sender, recipient, amount, token []byte
	)
	if err := rows.Scan(&tr.Seq, &tr.Index, &tr.Time, &txID, &origin, &sender, &recipient, &amount, &token); err != nil {
		return nil, err
	}
	tr.TxID = meter.BytesToBytes32(txID)
	tr.TxOrigin = meter.BytesToAddress(origin)
	tr.Sender = meter.BytesToAddress(sender)
	tr.Recipient = meter.BytesToAddress(recipient)
	tr.Amount = new(big.Int).SetBytes(amount)
	tr.Token = meter.BytesToAddress(token)
	return &tr, nil
}

func topicValue(topic *meter.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// Batch collects the rows of one receipt and writes them atomically.
type Batch struct {
	db        *sql.DB
	seq       uint64
	time      uint64
	events    []*Event
	transfers []*Transfer
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		if e := tx.Rollback(); e != nil {
			log.Warn("could not rollback", "err", e)
		}
		return err
	}
	return tx.Commit()
}

// Commit writes all collected rows in one sql transaction.
func (b *Batch) Commit() error {
	return b.execInTx(func(tx *sql.Tx) error {
		insertEvent, err := tx.Prepare("INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer insertEvent.Close()
		for _, ev := range b.events {
			if _, err := insertEvent.Exec(ev.Seq, ev.Index, ev.Time, ev.TxID.Bytes(), ev.TxOrigin.Bytes(), ev.Address.Bytes(),
				topicValue(ev.Topics[0]), topicValue(ev.Topics[1]), topicValue(ev.Topics[2]), topicValue(ev.Topics[3]), topicValue(ev.Topics[4]),
				ev.Data); err != nil {
				return errors.Wrapf(err, "insert event %d/%d", ev.Seq, ev.Index)
			}
		}

		insertTransfer, err := tx.Prepare("INSERT OR REPLACE INTO transfer(" + transferColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer insertTransfer.Close()
		for _, tr := range b.transfers {
			if _, err := insertTransfer.Exec(tr.Seq, tr.Index, tr.Time, tr.TxID.Bytes(), tr.TxOrigin.Bytes(),
				tr.Sender.Bytes(), tr.Recipient.Bytes(), tr.Amount.Bytes(), tr.Token.Bytes()); err != nil {
				return errors.Wrapf(err, "insert transfer %d/%d", tr.Seq, tr.Index)
			}
		}
		return nil
	})
}

func (b *Batch) ForTransaction(txID meter.Bytes32, txOrigin meter.Address) struct {
	Insert func(tx.Events, tx.Transfers) *Batch
} {
	return struct {
		Insert func(events tx.Events, transfers tx.Transfers) *Batch
	}{
		func(events tx.Events, transfers tx.Transfers) *Batch {
			for _, event := range events {
				b.events = append(b.events, newEvent(b.seq, b.time, uint32(len(b.events)), txID, txOrigin, event))
			}
			for _, transfer := range transfers {
				b.transfers = append(b.transfers, newTransfer(b.seq, b.time, uint32(len(b.transfers)), txID, txOrigin, transfer))
			}
			return b
		},
	}
}
