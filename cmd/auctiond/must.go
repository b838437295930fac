// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "gopkg.in/urfave/cli.v1"
)

// maximum tolerated clock offset against NTP.
const maxClockOffset = 5 * time.Second

func logLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func initLogger(ctx *cli.Context) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(ctx.Int(verbosityFlag.Name)),
		TimeFormat: "01-02|15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
	log = slog.Default().With("pkg", "auctiond")
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(presetFlag.Name)
	if path == "" {
		fatal(fmt.Sprintf("flag %v is required", presetFlag.Name))
	}
	p, err := genesis.LoadPreset(path)
	if err != nil {
		fatal(err)
	}
	gene, err := genesis.New(p)
	if err != nil {
		fatal(err)
	}
	return gene
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, gene.Name())
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	if _, err := fdlimit.Raise(5120 * 4); err != nil {
		fatal("failed to increase fd limit", err)
	}
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	} else {
		log.Info("fd limit", "limit", limit)
	}

	fileCache := limit / 2
	if fileCache > 1024 {
		fileCache = 1024
	}

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: fileCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open main database [%v]: %v", dir, err))
	}
	return db
}

func openLogDB(ctx *cli.Context, dataDir string) *logdb.LogDB {
	path := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", path, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open main database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// initRuntime registers the collaborators of gene and applies it if the
// ledger is fresh.
func initRuntime(gene *genesis.Genesis, mainDB *lvldb.LevelDB, logDB *logdb.LogDB) *runtime.Runtime {
	feeds := feed.NewRegistry()
	receivers := setypes.NewReceivers()
	if err := gene.Register(feeds, receivers); err != nil {
		fatal("register collaborators:", err)
	}

	rt, err := runtime.New(mainDB, logDB, &setypes.Collaborators{
		Feeds:     feeds,
		Assets:    nft.Resolve,
		Receivers: receivers,
	}, runtime.SystemClock)
	if err != nil {
		fatal("initialize runtime:", err)
	}
	if _, err := gene.Apply(rt); err != nil {
		fatal(err)
	}
	return rt
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}

	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXRequestID(handler)
	handler = handleXVersion(handler)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("API server stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			log.Warn("can't close API server", "err", err)
		}
		goes.Wait()
	}
}

func startMetricsServer(ctx *cli.Context) (string, func()) {
	addr := ctx.String(metricsAddrFlag.Name)
	if addr == "" {
		return "disabled", func() {}
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		if err := srv.Close(); err != nil {
			log.Warn("can't close metrics server", "err", err)
		}
		goes.Wait()
	}
}

// checkClockOffset warns when the local clock drifts. Auction windows and
// price staleness are judged against it.
func checkClockOffset(ctx *cli.Context) {
	if ctx.Bool(noClockCheckFlag.Name) {
		return
	}
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		log.Warn("clock offset detected", "offset", meter.PrettyDuration(resp.ClockOffset))
	}
}

func printStartupMessage(gene *genesis.Genesis, rt *runtime.Runtime, instanceDir, apiURL, metricsURL string) {
	head := rt.Head()
	fmt.Printf(`Starting %v
    Network         [ %v ]
    Head            [ #%v @%v ]
    Feeds           [ %v ]
    Instance dir    [ %v ]
    API portal      [ %v ]
    Metrics         [ %v ]
`,
		"auctiond "+fullVersion(),
		gene.Name(),
		head.Seq, time.Unix(int64(head.Time), 0),
		len(gene.Feeds()),
		instanceDir,
		apiURL,
		metricsURL)
}
