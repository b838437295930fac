// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

// EventMessage is pushed for every matching event.
type EventMessage struct {
	Address meter.Address        `json:"address"`
	Topics  []meter.Bytes32      `json:"topics"`
	Data    string               `json:"data"`
	Meta    transactions.LogMeta `json:"meta"`
}

func convertEvent(r *tx.Receipt, ev *tx.Event) *EventMessage {
	return &EventMessage{
		Address: ev.Address,
		Topics:  ev.Topics,
		Data:    hexutil.Encode(ev.Data),
		Meta: transactions.LogMeta{
			Seq:      uint64(r.Seq),
			Time:     r.Time,
			TxID:     r.TxID,
			TxOrigin: r.Origin,
		},
	}
}

func convertLoggedEvent(ev *logdb.Event) *EventMessage {
	msg := &EventMessage{
		Address: ev.Address,
		Topics:  make([]meter.Bytes32, 0, len(ev.Topics)),
		Data:    hexutil.Encode(ev.Data),
		Meta: transactions.LogMeta{
			Seq:      ev.Seq,
			Time:     ev.Time,
			TxID:     ev.TxID,
			TxOrigin: ev.TxOrigin,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			msg.Topics = append(msg.Topics, *topic)
		}
	}
	return msg
}

type EventFilter struct {
	Address *meter.Address
	Topics  [5]*meter.Bytes32
}

func (f *EventFilter) Match(ev *tx.Event) bool {
	if f.Address != nil && *f.Address != ev.Address {
		return false
	}
	for i, topic := range f.Topics {
		if topic == nil {
			continue
		}
		if i >= len(ev.Topics) || ev.Topics[i] != *topic {
			return false
		}
	}
	return true
}

func (f *EventFilter) criteria() *logdb.EventCriteria {
	return &logdb.EventCriteria{Address: f.Address, Topics: f.Topics}
}

var topicParams = [5]string{"topic0", "topic1", "topic2", "topic3", "topic4"}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	f := &EventFilter{}
	if s := query.Get("address"); s != "" {
		addr, err := meter.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "address")
		}
		f.Address = &addr
	}
	for i, name := range topicParams {
		if s := query.Get(name); s != "" {
			topic, err := meter.ParseBytes32(s)
			if err != nil {
				return nil, errors.WithMessage(err, name)
			}
			f.Topics[i] = &topic
		}
	}
	return f, nil
}
