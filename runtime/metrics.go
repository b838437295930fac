// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	execCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runtime_exec_total",
		Help: "Counter of executed calls by result",
	}, []string{"result"})
	execDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runtime_exec_seconds",
		Help:    "Time spent executing a call, lock wait included",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
	seqGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runtime_seq",
		Help: "Sequence number of the last committed call",
	})
	auctionsCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auctions_created_total",
		Help: "Counter of auctions created",
	})
	bidsAcceptedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bids_accepted_total",
		Help: "Counter of bids accepted",
	})
	auctionsSettledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auctions_settled_total",
		Help: "Counter of auctions settled",
	})
	logdbFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logdb_failures_total",
		Help: "Counter of receipts that could not be indexed",
	})
)

var registerOnce sync.Once

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(execCounter)
		prometheus.MustRegister(execDuration)
		prometheus.MustRegister(seqGauge)
		prometheus.MustRegister(auctionsCreatedCounter)
		prometheus.MustRegister(bidsAcceptedCounter)
		prometheus.MustRegister(auctionsSettledCounter)
		prometheus.MustRegister(logdbFailuresCounter)
	})
}
