// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
)

// Event represents a log emitted by a module.
// Topics[0] is the event signature hash; Data is the rlp encoded payload.
type Event struct {
	Address meter.Address
	Topics  []meter.Bytes32
	Data    []byte
}

// Events slice of event logs.
type Events []*Event

// Filter returns events whose topic0 equals the given signature hash.
func (evs Events) Filter(topic meter.Bytes32) Events {
	var out Events
	for _, ev := range evs {
		if len(ev.Topics) > 0 && ev.Topics[0] == topic {
			out = append(out, ev)
		}
	}
	return out
}

// DecodeData decodes the rlp payload into val.
func (e *Event) DecodeData(val interface{}) error {
	return rlp.DecodeBytes(e.Data, val)
}
