// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/meterio/meter-auction/api"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/runtime"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v2"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = slog.Default().With("pkg", "auctiond")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "auctiond",
		Usage:     "Auction settlement node of Meter.io",
		Copyright: "2020 Meter Foundation <https://meter.io/>",
		Flags: []cli.Flag{
			dataDirFlag,
			presetFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			metricsAddrFlag,
			verbosityFlag,
			noClockCheckFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "serve a devnet ledger with funded dev accounts",
				Flags: []cli.Flag{
					dataDirFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					metricsAddrFlag,
					verbosityFlag,
					persistFlag,
					reportIntervalFlag,
				},
				Action: soloAction,
			},
			{
				Name:   "preset",
				Usage:  "print the devnet preset as yaml, a starting point for custom presets",
				Action: presetAction,
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(ctx *cli.Context) error {
					fmt.Println(fullVersion())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { log.Info("exited") }()

	initLogger(ctx)
	checkClockOffset(ctx)

	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	logDB := openLogDB(ctx, instanceDir)
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	rt := initRuntime(gene, mainDB, logDB)
	defer func() { log.Info("closing runtime..."); rt.Close() }()

	apiHandler, apiCloser := api.New(rt, gene.Feeds(), gene.Name(), fullVersion(), ctx.String(apiCorsFlag.Name))
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL, metricsCloser := startMetricsServer(ctx)
	defer func() { log.Info("stopping metrics server..."); metricsCloser() }()

	printStartupMessage(gene, rt, instanceDir, apiURL, metricsURL)

	<-exitSignal.Done()
	return nil
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { log.Info("exited") }()

	initLogger(ctx)
	gene := genesis.NewDevnet(runtime.SystemClock())

	var mainDB *lvldb.LevelDB
	var logDB *logdb.LogDB
	var instanceDir string

	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(ctx, instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	rt := initRuntime(gene, mainDB, logDB)
	defer func() { log.Info("closing runtime..."); rt.Close() }()

	apiHandler, apiCloser := api.New(rt, gene.Feeds(), gene.Name(), fullVersion(), ctx.String(apiCorsFlag.Name))
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL, metricsCloser := startMetricsServer(ctx)
	defer func() { log.Info("stopping metrics server..."); metricsCloser() }()

	var goes co.Goes
	defer goes.Wait()
	reporter := newDevReporter(gene.Feeds(), runtime.SystemClock, ctx.Duration(reportIntervalFlag.Name))
	goes.Go(func() { reporter.Run(exitSignal) })

	printStartupMessage(gene, rt, instanceDir, apiURL, metricsURL)
	printDevAccounts()

	<-exitSignal.Done()
	return nil
}

func printDevAccounts() {
	fmt.Println("Dev accounts (the first one owns the oracle, the factory and the collection):")
	for i, a := range genesis.DevAccounts() {
		fmt.Printf("    [%d] %v\n", i, a.Address)
	}
	fmt.Printf("    USDC token %v\n", genesis.DevUSDC)
}

func presetAction(ctx *cli.Context) error {
	p := genesis.DevPreset(uint64(time.Now().Unix()))
	out, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("# === devnet preset ===")
	}
	_, err = os.Stdout.Write(out)
	return err
}
