// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

type TopicSet struct {
	Topic0 *meter.Bytes32 `json:"topic0"`
	Topic1 *meter.Bytes32 `json:"topic1"`
	Topic2 *meter.Bytes32 `json:"topic2"`
	Topic3 *meter.Bytes32 `json:"topic3"`
	Topic4 *meter.Bytes32 `json:"topic4"`
}

// FilteredEvent is an indexed event, named when its signature is known.
type FilteredEvent struct {
	Address meter.Address        `json:"address"`
	Name    string               `json:"name,omitempty"`
	Topics  []*meter.Bytes32     `json:"topics"`
	Data    string               `json:"data"`
	Meta    transactions.LogMeta `json:"meta"`
}

func convertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Topics:  make([]*meter.Bytes32, 0, len(event.Topics)),
		Data:    hexutil.Encode(event.Data),
		Meta: transactions.LogMeta{
			Seq:      event.Seq,
			Time:     event.Time,
			TxID:     event.TxID,
			TxOrigin: event.TxOrigin,
		},
	}
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	if t0 := event.Topics[0]; t0 != nil {
		fe.Name, _ = EventName(*t0)
	}
	return fe
}

func (e *FilteredEvent) String() string {
	return fmt.Sprintf("Event(%v at %v, topics: %v, data: %v, seq %v, tx %v)",
		e.Name, e.Address, e.Topics, e.Data, e.Meta.Seq, e.Meta.TxID)
}

// EventCriteria matches events by emitter and topics. Event is a shorthand
// for the signature topic of a known event and conflicts with Topic0.
type EventCriteria struct {
	Address *meter.Address `json:"address"`
	Event   string         `json:"event,omitempty"`
	TopicSet
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *logdb.Range     `json:"range"`
	Options     *logdb.Options   `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(filter *EventFilter) (*logdb.EventFilter, error) {
	switch filter.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, errors.Errorf("order: unknown %q", filter.Order)
	}
	f := &logdb.EventFilter{
		Range:   filter.Range,
		Options: filter.Options,
		Order:   filter.Order,
	}
	for i, c := range filter.CriteriaSet {
		if c == nil {
			return nil, errors.Errorf("criteriaSet[%d]: null", i)
		}
		topic0 := c.Topic0
		if c.Event != "" {
			if topic0 != nil {
				return nil, errors.Errorf("criteriaSet[%d]: both event and topic0 set", i)
			}
			t, ok := EventTopic(c.Event)
			if !ok {
				return nil, errors.Errorf("criteriaSet[%d].event: unknown %q", i, c.Event)
			}
			topic0 = &t
		}
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Topics:  [5]*meter.Bytes32{topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4},
		})
	}
	return f, nil
}
