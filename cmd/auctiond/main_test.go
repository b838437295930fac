// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestDevReporter(t *testing.T) {
	ref := meter.BytesToAddress([]byte("ref"))
	agg := feed.NewReported(8, "MTR / USD")
	agg.Submit(big.NewInt(2000e8), 100)

	now := uint64(100)
	r := newDevReporter(map[meter.Address]*feed.Reported{ref: agg}, func() uint64 { return now }, time.Minute)

	assert.Equal(t, 0, r.report(context.Background()), "fresh round is kept")

	now = 160
	assert.Equal(t, 1, r.report(context.Background()))
	latest, err := agg.LatestRoundData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest.RoundID)
	assert.Equal(t, uint64(160), latest.UpdatedAt)
	assert.Equal(t, big.NewInt(2000e8), latest.Answer)
}

func TestDevReporterRun(t *testing.T) {
	ref := meter.BytesToAddress([]byte("ref"))
	agg := feed.NewReported(8, "MTR / USD")
	agg.Submit(big.NewInt(1), 1)

	ctx, cancel := context.WithCancel(context.Background())
	r := newDevReporter(map[meter.Address]*feed.Reported{ref: agg}, func() uint64 { return 2 }, time.Hour)
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return agg.Rounds() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	// a zero interval disables reporting
	newDevReporter(map[meter.Address]*feed.Reported{ref: agg}, func() uint64 { return 3 }, 0).Run(context.Background())
	assert.Equal(t, 2, agg.Rounds())
}

func TestDevPresetLoadable(t *testing.T) {
	out, err := yaml.Marshal(genesis.DevPreset(1000))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "devnet.yaml")
	require.NoError(t, os.WriteFile(path, out, 0600))

	p, err := genesis.LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "devnet", p.Name)
	assert.Len(t, p.Feeds, 2)
	assert.Equal(t, genesis.DevAccounts()[0].Address.String(), p.Owner)
}

func TestMiddlewares(t *testing.T) {
	var gotID string
	var gotDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("x-request-id")
		_, gotDeadline = r.Context().Deadline()
	})
	srv := httptest.NewServer(requestBodyLimit(handleXVersion(handleXRequestID(handleAPITimeout(h, time.Second)))))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.NotEmpty(t, gotID)
	assert.Equal(t, gotID, res.Header.Get("x-request-id"))
	assert.Equal(t, fullVersion(), res.Header.Get("x-auction-ver"))
	assert.True(t, gotDeadline)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("x-request-id", "abc")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "abc", gotID)
	assert.Equal(t, "abc", res.Header.Get("x-request-id"))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, logLevel(0))
	assert.Equal(t, slog.LevelWarn, logLevel(2))
	assert.Equal(t, slog.LevelInfo, logLevel(3))
	assert.Equal(t, slog.LevelDebug, logLevel(9))
}
