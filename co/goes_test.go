// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/meterio/meter-auction/co"
	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		g     co.Goes
		count int32
	)
	for i := 0; i < 50; i++ {
		g.Go(func() {
			time.Sleep(time.Millisecond * 5)
			atomic.AddInt32(&count, 1)
		})
	}
	select {
	case <-g.Done():
	case <-time.After(time.Second * 5):
		t.Fatal("goroutines did not finish")
	}
	assert.Equal(t, int32(50), atomic.LoadInt32(&count))
}
