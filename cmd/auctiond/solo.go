// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
)

// devReporter keeps the solo feeds fresh by reporting their latest answer
// again, so prices never go stale while a developer works.
type devReporter struct {
	feeds    map[meter.Address]*feed.Reported
	clock    runtime.Clock
	interval time.Duration
}

func newDevReporter(feeds map[meter.Address]*feed.Reported, clock runtime.Clock, interval time.Duration) *devReporter {
	return &devReporter{feeds: feeds, clock: clock, interval: interval}
}

// report submits one round on every feed and returns how many were reported.
func (r *devReporter) report(ctx context.Context) int {
	now := r.clock()
	n := 0
	for ref, agg := range r.feeds {
		latest, err := agg.LatestRoundData(ctx)
		if err != nil {
			log.Warn("failed to read feed", "ref", ref, "err", err)
			continue
		}
		if latest.UpdatedAt >= now {
			continue
		}
		round := agg.Submit(latest.Answer, now)
		log.Debug("feed reported", "ref", ref, "desc", agg.Description(), "round", round)
		n++
	}
	return n
}

// Run reports immediately and then on every tick until ctx is done.
func (r *devReporter) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	r.report(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}
