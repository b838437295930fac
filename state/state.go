// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

const (
	balancePrefix = byte('b')
	storagePrefix = byte('s')
)

// State manages token balances and module storage on top of a kv store.
// Changes are kept in memory, journaled for checkpoint/revert, until Commit.
// It's not thread-safe; the runtime serializes access.
type State struct {
	kv       kv.GetPutter
	cache    *committedCache
	dirty    map[string][]byte // nil value marks a deleted key
	journal  []journalEntry
	err      error
	setError func(err error)
}

type journalEntry struct {
	key     string
	prev    []byte
	hadPrev bool
}

// New create an state object.
func New(kv kv.GetPutter) *State {
	state := &State{
		kv:    kv,
		cache: newCommittedCache(committedCacheSize),
		dirty: make(map[string][]byte),
	}
	state.setError = func(err error) {
		if state.err == nil {
			state.err = err
		}
	}
	return state
}

// Err returns first occurred error.
func (s *State) Err() error {
	return s.err
}

// ClearErr resets the absorbed error, used after reverting a failed operation.
func (s *State) ClearErr() {
	s.err = nil
}

func balanceKey(token, addr meter.Address) string {
	key := make([]byte, 0, 1+2*meter.AddressLength)
	key = append(key, balancePrefix)
	key = append(key, token[:]...)
	key = append(key, addr[:]...)
	return string(key)
}

func storageKey(addr meter.Address, key meter.Bytes32) string {
	k := make([]byte, 0, 1+meter.AddressLength+32)
	k = append(k, storagePrefix)
	k = append(k, addr[:]...)
	k = append(k, key[:]...)
	return string(k)
}

func (s *State) get(key string) []byte {
	if v, ok := s.dirty[key]; ok {
		return v
	}
	if v, ok := s.cache.Get(key); ok {
		return v
	}
	v, err := s.kv.Get([]byte(key))
	if err != nil {
		if !s.kv.IsNotFound(err) {
			s.setError(errors.Wrap(err, "state get"))
		}
		v = nil
	}
	s.cache.Put(key, v)
	return v
}

func (s *State) put(key string, value []byte) {
	if len(value) == 0 {
		value = nil
	}
	prev, had := s.dirty[key]
	s.journal = append(s.journal, journalEntry{key, prev, had})
	s.dirty[key] = value
}

// GetBalance returns the balance of token held by addr.
func (s *State) GetBalance(token, addr meter.Address) *big.Int {
	raw := s.get(balanceKey(token, addr))
	if len(raw) == 0 {
		return new(big.Int)
	}
	var balance big.Int
	if err := rlp.DecodeBytes(raw, &balance); err != nil {
		s.setError(errors.Wrap(err, "decode balance"))
		return new(big.Int)
	}
	return &balance
}

// SetBalance set balance of token for the given address.
func (s *State) SetBalance(token, addr meter.Address, balance *big.Int) {
	if balance.Sign() == 0 {
		s.put(balanceKey(token, addr), nil)
		return
	}
	raw, err := rlp.EncodeToBytes(balance)
	if err != nil {
		s.setError(errors.Wrap(err, "encode balance"))
		return
	}
	s.put(balanceKey(token, addr), raw)
}

// AddBalance credits amount of token to addr.
func (s *State) AddBalance(token, addr meter.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	balance := s.GetBalance(token, addr)
	s.SetBalance(token, addr, balance.Add(balance, amount))
}

// SubBalance debits amount of token from addr, returns false if not enough.
func (s *State) SubBalance(token, addr meter.Address, amount *big.Int) bool {
	if amount.Sign() == 0 {
		return true
	}
	balance := s.GetBalance(token, addr)
	if balance.Cmp(amount) < 0 {
		return false
	}
	s.SetBalance(token, addr, balance.Sub(balance, amount))
	return true
}

// Transfer moves amount of token between two accounts.
func (s *State) Transfer(token, from, to meter.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative transfer amount")
	}
	if !s.SubBalance(token, from, amount) {
		return errors.WithMessagef(meter.ErrInsufficientBalance, "%v has %v, need %v", from, s.GetBalance(token, from), amount)
	}
	s.AddBalance(token, to, amount)
	return nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr meter.Address, key meter.Bytes32) rlp.RawValue {
	return s.get(storageKey(addr, key))
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr meter.Address, key meter.Bytes32, raw rlp.RawValue) {
	s.put(storageKey(addr, key), raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr meter.Address, key meter.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr meter.Address, key meter.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.setError(err)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 0 || revision > len(s.journal) {
		return
	}
	for i := len(s.journal) - 1; i >= revision; i-- {
		e := s.journal[i]
		if e.hadPrev {
			s.dirty[e.key] = e.prev
		} else {
			delete(s.dirty, e.key)
		}
	}
	s.journal = s.journal[:revision]
}

// Dirty returns how many keys are pending commit.
func (s *State) Dirty() int {
	return len(s.dirty)
}

// Commit writes pending changes to kv in one batch when supported.
func (s *State) Commit() error {
	if s.err != nil {
		return s.err
	}
	var w kv.Putter = s.kv
	var batch kv.Batch
	if b, ok := s.kv.(interface{ NewBatch() kv.Batch }); ok {
		batch = b.NewBatch()
		w = batch
	}
	for key, value := range s.dirty {
		var err error
		if value == nil {
			err = w.Delete([]byte(key))
		} else {
			err = w.Put([]byte(key), value)
		}
		if err != nil {
			return errors.Wrap(err, "commit state")
		}
	}
	if batch != nil {
		if err := batch.Write(); err != nil {
			return errors.Wrap(err, "commit state")
		}
	}
	for key, value := range s.dirty {
		s.cache.Put(key, value)
	}
	s.dirty = make(map[string][]byte)
	s.journal = s.journal[:0]
	return nil
}

// Discard drops all uncommitted changes.
func (s *State) Discard() {
	s.dirty = make(map[string][]byte)
	s.journal = s.journal[:0]
	s.err = nil
}
