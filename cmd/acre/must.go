// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/elastic/gosigar"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/metrics"
	"github.com/acreage-labs/acreage/runtime"
)

func newLogHandler(w io.Writer, level *slog.LevelVar, jsonLogs bool) slog.Handler {
	if jsonLogs {
		return log.JSONHandlerWithLevel(w, level)
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	return log.NewTerminalHandlerWithLevel(w, level, useColor)
}

func initLogger(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil || lvl > int(log.LegacyLevelTrace) {
		return fmt.Errorf("unknown verbosity level %v", ctx.Uint64(verbosityFlag.Name))
	}
	jsonLogs := ctx.Bool(jsonLogsFlag.Name)

	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))
	log.SetDefault(log.NewLogger(newLogHandler(os.Stderr, &level, jsonLogs)))

	if ctx.IsSet(verbosityFarmFlag.Name) {
		var farmLevel slog.LevelVar
		farmLvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFarmFlag.Name))
		if err != nil || farmLvl > int(log.LegacyLevelTrace) {
			return fmt.Errorf("unknown farm verbosity level %v", ctx.Uint64(verbosityFarmFlag.Name))
		}
		farmLevel.Set(log.FromLegacyLevel(farmLvl))
		farm.SetLogger(log.NewLogger(newLogHandler(os.Stderr, &farmLevel, jsonLogs)).With("pkg", "farm"))
	}
	return nil
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	custom, err := genesis.Load(path)
	if err != nil {
		return nil, errors.WithMessage(err, "load genesis file")
	}
	gene, err := genesis.NewCustom(custom)
	if err != nil {
		return nil, errors.WithMessage(err, "build genesis")
	}
	return gene, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(instanceDir string, cacheMB int) (*lvldb.LevelDB, error) {
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	dir := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", dir)
	}
	return db, nil
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	return lvldb.NewMem()
}

func openMemEventDB() (*eventdb.EventDB, error) {
	return eventdb.NewMem()
}

// normalizeCacheSize keeps the cache between 128MB and half of the physical memory.
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

// server is a listening http server.
type server struct {
	srv      *http.Server
	listener net.Listener
}

func listen(addr string, handler http.Handler) (*server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen [%v]", addr)
	}
	return &server{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
		listener: listener,
	}, nil
}

func (s *server) url() string {
	return "http://" + s.listener.Addr().String() + "/"
}

func (s *server) serve() error {
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Warn("server shutdown", "err", err)
	}
}

func newAPIServer(ctx *cli.Context, handler http.Handler) (*server, string, error) {
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = requestBodyLimit(handler)
	srv, err := listen(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return nil, "", errors.WithMessage(err, "API")
	}
	return srv, srv.url(), nil
}

func newMetricsServer(addr string) (*server, error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	srv, err := listen(addr, handlers.CompressHandler(router))
	if err != nil {
		return nil, errors.WithMessage(err, "metrics")
	}
	return srv, nil
}

func printStartupMessage(gene *genesis.Genesis, rt *runtime.Runtime, instanceDir, apiURL string, metricsSrv *server) {
	metricsURL := "Disabled"
	if metricsSrv != nil {
		metricsURL = metricsSrv.url() + "metrics"
	}
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Variant      [ %v ]
    Last call    [ #%v at %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		fullVersion(),
		gene.ID(), gene.Name(),
		gene.EngineConfig().Variant,
		rt.Seq(), rt.Time(),
		instanceDir,
		apiURL,
		metricsURL)
}
