// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/acreage-labs/acreage/api"
	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/kv"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/metrics"
	"github.com/acreage-labs/acreage/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "Acre",
		Usage:     "Staking farm engine with delegated voting",
		Copyright: "2025 The Acreage developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			memFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			pprofFlag,
			cacheFlag,
			verbosityFlag,
			verbosityFarmFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			skipNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:      "replay",
				Usage:     "replay scenario files on an in-memory engine",
				ArgsUsage: "<scenario.yaml>...",
				Flags: []cli.Flag{
					expectFlag,
					traceFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: replayAction,
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

	if err := initLogger(ctx); err != nil {
		return err
	}
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cacheSize, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return errors.WithMessage(err, cacheFlag.Name)
	}
	cacheMB := normalizeCacheSize(cacheSize)
	log.Debug("cache size(MB)", "size", cacheMB)

	var (
		instanceDir string
		mainDB      kv.StoreCloser
		eventDB     *eventdb.EventDB
	)
	if ctx.Bool(memFlag.Name) {
		instanceDir = "Memory"
		if mainDB, err = openMemMainDB(); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if eventDB, err = openMemEventDB(); err != nil {
				return err
			}
		}
	} else {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir, cacheMB); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if eventDB, err = openEventDB(instanceDir); err != nil {
				return err
			}
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	if eventDB != nil {
		defer func() { log.Info("closing event database..."); eventDB.Close() }()
	}

	// subscriptions replay from the result cache, it must span the backtrace limit
	backtraceLimit := ctx.Uint64(apiBacktraceLimitFlag.Name)
	rt, err := runtime.New(mainDB, gene, eventDB, runtime.Options{
		ReceiptCacheSize: int(max(backtraceLimit+1, 1024)),
		StateCacheSize:   cacheMB / 2 * 1024 * 1024,
	})
	if err != nil {
		return err
	}

	apiHandler, apiCloser := api.New(rt, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		BacktraceLimit:  backtraceLimit,
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiSrv, apiURL, err := newAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}
	var metricsSrv *server
	if ctx.Bool(enableMetricsFlag.Name) {
		if metricsSrv, err = newMetricsServer(ctx.String(metricsAddrFlag.Name)); err != nil {
			return err
		}
	}

	printStartupMessage(gene, rt, instanceDir, apiURL, metricsSrv)

	g, gctx := errgroup.WithContext(exitSignal)
	g.Go(apiSrv.serve)
	if metricsSrv != nil {
		g.Go(metricsSrv.serve)
	}
	if !ctx.Bool(skipNTPFlag.Name) {
		g.Go(func() error {
			clockOffsetLoop(gctx, time.Hour)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("stopping API server...")
		apiSrv.shutdown()
		if metricsSrv != nil {
			log.Info("stopping metrics server...")
			metricsSrv.shutdown()
		}
		return nil
	})
	return g.Wait()
}
