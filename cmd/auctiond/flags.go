// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	presetFlag = cli.StringFlag{
		Name:  "preset",
		Usage: "yaml preset applied to a fresh ledger",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.IntFlag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:8670",
		Usage: "prometheus metrics listening address (disabled if empty)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	noClockCheckFlag = cli.BoolFlag{
		Name:  "no-clock-check",
		Usage: "skip the NTP clock offset check on startup",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save solo ledger to the data dir instead of memory",
	}
	reportIntervalFlag = cli.DurationFlag{
		Name:  "report-interval",
		Value: time.Minute,
		Usage: "interval of dev feed reports in solo mode (disabled if 0)",
	}
)
