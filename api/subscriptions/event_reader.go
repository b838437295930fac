// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/tx"
)

// backlogPage bounds a single backlog query.
const backlogPage = 1000

type msgReader interface {
	// Backlog returns the next page of messages recorded before the
	// subscription started, and nothing once the replay is exhausted.
	Backlog(ctx context.Context) ([]interface{}, error)
	// Read returns the messages carried by a committed receipt.
	Read(r *tx.Receipt) []interface{}
}

type eventReader struct {
	logDB  *logdb.LogDB
	filter *EventFilter
	pos    uint64 // first seq to replay, zero for live only
	offset uint64 // events of the backlog already replayed
	done   bool
	last   uint64 // highest seq already delivered from the backlog
}

func newEventReader(logDB *logdb.LogDB, filter *EventFilter, pos uint64) *eventReader {
	return &eventReader{logDB: logDB, filter: filter, pos: pos}
}

func (er *eventReader) Backlog(ctx context.Context) ([]interface{}, error) {
	if er.done || er.pos == 0 || er.logDB == nil {
		return nil, nil
	}
	// Events only append at higher seqs, so offsets into the ascending
	// backlog stay stable between pages.
	events, err := er.logDB.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{er.filter.criteria()},
		Range:       &logdb.Range{Unit: logdb.Seq, From: er.pos},
		Options:     &logdb.Options{Offset: er.offset, Limit: backlogPage},
	})
	if err != nil {
		return nil, err
	}
	er.offset += uint64(len(events))
	er.done = len(events) < backlogPage
	msgs := make([]interface{}, len(events))
	for i, ev := range events {
		msgs[i] = convertLoggedEvent(ev)
		if ev.Seq > er.last {
			er.last = ev.Seq
		}
	}
	return msgs, nil
}

func (er *eventReader) Read(r *tx.Receipt) []interface{} {
	if uint64(r.Seq) <= er.last {
		return nil
	}
	var msgs []interface{}
	for _, ev := range r.Events {
		if er.filter.Match(ev) {
			msgs = append(msgs, convertEvent(r, ev))
		}
	}
	return msgs
}
