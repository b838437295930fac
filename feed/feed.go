// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package feed models external price-reporting sources.
package feed

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// RoundData is one reading of an aggregator.
type RoundData struct {
	RoundID         uint64
	Answer          *big.Int
	StartedAt       uint64
	UpdatedAt       uint64
	AnsweredInRound uint64
}

func (r *RoundData) String() string {
	return fmt.Sprintf("Round{ID:%d Answer:%v StartedAt:%d UpdatedAt:%d AnsweredIn:%d}", r.RoundID, r.Answer, r.StartedAt, r.UpdatedAt, r.AnsweredInRound)
}

// Aggregator is a price feed.
type Aggregator interface {
	Decimals() uint8
	Description() string
	LatestRoundData(ctx context.Context) (*RoundData, error)
}

// Resolver resolves a feed reference to its aggregator.
type Resolver interface {
	Resolve(ref meter.Address) (Aggregator, bool)
}

var ErrNoRounds = errors.New("no rounds reported")

// Reported is an aggregator fed by trusted reporters.
type Reported struct {
	mu          sync.RWMutex
	decimals    uint8
	description string
	rounds      []RoundData
}

// NewReported creates an empty reporter-fed aggregator.
func NewReported(decimals uint8, description string) *Reported {
	return &Reported{decimals: decimals, description: description}
}

func (r *Reported) Decimals() uint8     { return r.decimals }
func (r *Reported) Description() string { return r.description }

// Submit records a new round and returns its id.
func (r *Reported) Submit(answer *big.Int, updatedAt uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uint64(len(r.rounds)) + 1
	r.rounds = append(r.rounds, RoundData{
		RoundID:         id,
		Answer:          new(big.Int).Set(answer),
		StartedAt:       updatedAt,
		UpdatedAt:       updatedAt,
		AnsweredInRound: id,
	})
	return id
}

// LatestRoundData returns a copy of the most recent round.
func (r *Reported) LatestRoundData(ctx context.Context) (*RoundData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.rounds) == 0 {
		return nil, ErrNoRounds
	}
	latest := r.rounds[len(r.rounds)-1]
	latest.Answer = new(big.Int).Set(latest.Answer)
	return &latest, nil
}

// Rounds returns how many rounds were reported.
func (r *Reported) Rounds() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rounds)
}
