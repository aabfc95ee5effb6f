package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/outofforest/mfs"
	"github.com/outofforest/mfs/metrics"
	"github.com/outofforest/mfs/pkg/hostfs"
	"github.com/outofforest/mfs/shell"
)

func main() {
	config := mfs.DefaultConfig()
	var (
		verbose     bool
		metricsAddr string
	)

	flag.Int64Var(&config.BlockSize, "block-size", config.BlockSize, "Size of the block in bytes")
	flag.Uint64Var(&config.NumBlocks, "blocks", config.NumBlocks, "Number of blocks in the arena")
	flag.Uint64Var(&config.MaxFiles, "max-files", config.MaxFiles, "Number of directory entries")
	flag.Uint64Var(&config.MaxInodes, "max-inodes", config.MaxInodes, "Number of inodes")
	flag.Uint64Var(&config.MaxBlocksPerFile, "max-blocks-per-file", config.MaxBlocksPerFile,
		"Maximum number of blocks used by single file")
	flag.IntVar(&config.MaxNameLength, "max-name-length", config.MaxNameLength, "Maximum length of the file name")
	flag.BoolVar(&verbose, "verbose", false, "Log operations at debug level")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics on, disabled if empty")
	flag.Parse()

	log, err := newLogger(verbose)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(config, metricsAddr, log); err != nil {
		log.Error("Shell failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(config mfs.Config, metricsAddr string, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fs, err := mfs.New(config, hostfs.OSFS{}, log)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		server := newMetricsServer(metricsAddr, fs)
		go func() {
			log.Info("Serving metrics", zap.String("address", metricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	// Reading stdin blocks, so the shell is not waited for after a signal.
	shellErr := make(chan error, 1)
	go func() {
		shellErr <- shell.New(fs, log).Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-shellErr:
		return err
	case <-ctx.Done():
		log.Info("Signal received, exiting")
		return nil
	}
}

func newMetricsServer(addr string, fs *mfs.FileSystem) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.New(fs))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
