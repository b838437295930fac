// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"fmt"
	"math/big"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq      uint64
	Index    uint32
	Time     uint64
	TxID     meter.Bytes32
	TxOrigin meter.Address // caller
	Address  meter.Address // always a module or instance address
	Topics   [5]*meter.Bytes32
	Data     []byte
}

// newEvent converts tx.Event to Event.
func newEvent(seq, time uint64, index uint32, txID meter.Bytes32, txOrigin meter.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		Seq:      seq,
		Index:    index,
		Time:     time,
		TxID:     txID,
		TxOrigin: txOrigin,
		Address:  txEvent.Address,
		Data:     txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

// Transfer represents tx.Transfer that can be stored in db.
type Transfer struct {
	Seq       uint64
	Index     uint32
	Time      uint64
	TxID      meter.Bytes32
	TxOrigin  meter.Address
	Sender    meter.Address
	Recipient meter.Address
	Amount    *big.Int
	Token     meter.Address
}

// newTransfer converts tx.Transfer to Transfer.
func newTransfer(seq, time uint64, index uint32, txID meter.Bytes32, txOrigin meter.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		Seq:       seq,
		Index:     index,
		Time:      time,
		TxID:      txID,
		TxOrigin:  txOrigin,
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
		Token:     transfer.Token,
	}
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *meter.Address
	Topics  [5]*meter.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

type TransferCriteria struct {
	TxOrigin  *meter.Address //who sent the call
	Sender    *meter.Address //who transferred tokens
	Recipient *meter.Address //who received tokens
	Token     *meter.Address
}

type TransferFilter struct {
	TxID        *meter.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

func (c *EventCriteria) columns() (cs columns) {
	if c.Address != nil {
		cs = cs.with("address", c.Address.Bytes())
	}
	for i, topic := range c.Topics {
		if topic != nil {
			cs = cs.with(fmt.Sprintf("topic%d", i), topic.Bytes())
		}
	}
	return
}

func (c *TransferCriteria) columns() (cs columns) {
	for _, col := range []struct {
		name string
		addr *meter.Address
	}{
		{"txOrigin", c.TxOrigin},
		{"sender", c.Sender},
		{"recipient", c.Recipient},
		{"token", c.Token},
	} {
		if col.addr != nil {
			cs = cs.with(col.name, col.addr.Bytes())
		}
	}
	return
}
