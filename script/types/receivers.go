// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math/big"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// Receivers is a concurrent ReceiverSet.
type Receivers struct {
	mu sync.RWMutex
	m  map[meter.Address]Receiver
}

func NewReceivers() *Receivers {
	return &Receivers{m: make(map[meter.Address]Receiver)}
}

// Register installs r as the hook of addr; a nil r removes it.
func (rs *Receivers) Register(addr meter.Address, r Receiver) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if r == nil {
		delete(rs.m, addr)
		return
	}
	rs.m[addr] = r
}

func (rs *Receivers) Receiver(addr meter.Address) (Receiver, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	r, ok := rs.m[addr]
	return r, ok
}

// ReceiverFunc adapts a func to Receiver.
type ReceiverFunc func(token, from meter.Address, amount *big.Int) error

func (f ReceiverFunc) Receive(token, from meter.Address, amount *big.Int) error {
	return f(token, from, amount)
}

// RejectAll refuses every direct payment.
var RejectAll Receiver = ReceiverFunc(func(token, from meter.Address, amount *big.Int) error {
	return errors.New("payments not accepted")
})
