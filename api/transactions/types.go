// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

// LogMeta locates an event or transfer in the ledger.
type LogMeta struct {
	Seq      uint64        `json:"seq"`
	Time     uint64        `json:"time"`
	TxID     meter.Bytes32 `json:"txID"`
	TxOrigin meter.Address `json:"txOrigin"`
}

type Event struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
}

type Transfer struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Token     meter.Address         `json:"token"`
}

// Receipt of an executed call.
type Receipt struct {
	Meta      LogMeta     `json:"meta"`
	Output    string      `json:"output"`
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
}

// ConvertReceipt converts a receipt to its JSON form.
func ConvertReceipt(r *tx.Receipt) *Receipt {
	receipt := &Receipt{
		Meta: LogMeta{
			Seq:      uint64(r.Seq),
			Time:     r.Time,
			TxID:     r.TxID,
			TxOrigin: r.Origin,
		},
		Output:    hexutil.Encode(r.Output),
		Events:    make([]*Event, len(r.Events)),
		Transfers: make([]*Transfer, len(r.Transfers)),
	}
	for i, ev := range r.Events {
		receipt.Events[i] = &Event{
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    hexutil.Encode(ev.Data),
		}
	}
	for i, t := range r.Transfers {
		receipt.Transfers[i] = &Transfer{
			Sender:    t.Sender,
			Recipient: t.Recipient,
			Amount:    (*math.HexOrDecimal256)(t.Amount),
			Token:     t.Token,
		}
	}
	return receipt
}

// RawCall is a call carrying pattern prefixed script data.
type RawCall struct {
	Origin   meter.Address         `json:"origin"`
	To       meter.Address         `json:"to"`
	Value    *math.HexOrDecimal256 `json:"value"`
	Nonce    uint64                `json:"nonce"`
	Data     hexutil.Bytes         `json:"data"`
	Simulate bool                  `json:"simulate"`
}
