// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key-value capabilities the ledger state needs from
// a database, so that state does not depend on a concrete engine.
package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// GetPutter defines methods to read/write kv.
type GetPutter interface {
	Getter
	Putter
}

// Batch defines batch write.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Iterator iterates over a key range in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Store is a database that supports batches and prefix iteration.
type Store interface {
	GetPutter
	NewBatch() Batch
	NewIterator(prefix []byte) Iterator
	Close() error
}
