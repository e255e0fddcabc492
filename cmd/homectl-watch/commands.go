package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexfrei/go-homectl/api/resource"
	"github.com/lexfrei/go-homectl/internal/config"
	"github.com/lexfrei/go-homectl/observability"
	"github.com/lexfrei/go-homectl/observability/prommetrics"
)

const (
	defaultConfigPath = "homectl.yaml"
	shutdownTimeout   = 5 * time.Second
)

var errUsage = errors.New("invalid usage")

func watchCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "watch")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	metrics, shutdown, err := setupMetrics(cfg.Metrics, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	client, err := resource.NewWithConfig(cfg.ClientConfig(logger, metrics))
	if err != nil {
		return errors.Wrap(err, "failed to create client")
	}

	ids, err := cfg.ResourceIDs()
	if err != nil {
		return err
	}

	stream, err := client.StreamChanges(ctx, ids, cfg.StreamOptions())
	if err != nil {
		return err
	}

	for _, v := range stream.Initial() {
		fmt.Fprintf(stdout, "initial %s\n", v)
	}

	for v := range stream.Changes() {
		fmt.Fprintf(stdout, "change %s\n", v)
	}

	return stream.Err()
}

func getCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	idList := fs.String("ids", "", "Comma-separated resource IDs (default: stream.resource_ids)")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "get")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	ids, err := cfg.ResourceIDs()
	if err != nil {
		return err
	}
	if *idList != "" {
		if ids, err = parseIDs(*idList); err != nil {
			return err
		}
	}

	client, err := resource.NewWithConfig(cfg.ClientConfig(logger, nil))
	if err != nil {
		return errors.Wrap(err, "failed to create client")
	}

	values, err := client.GetValues(ctx, ids)
	if err != nil {
		return err
	}

	for _, v := range values {
		fmt.Fprintln(stdout, v)
	}

	return nil
}

func validateCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", defaultConfigPath, "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "validate")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "config %s is valid: %d resources on %s\n",
		*cfgPath, len(cfg.Stream.ResourceIDs), cfg.Controller.URL)
	return nil
}

func parseIDs(list string) (resource.IDSet, error) {
	var ids []resource.ID
	for _, field := range strings.Split(list, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid resource ID %q", field)
		}
		ids = append(ids, resource.ID(id))
	}
	return resource.NewIDSet(ids...)
}

//nolint:ireturn // Returns the observability.Logger interface the client consumes
func newLogger(cfg config.LogConfig, w io.Writer) (observability.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return observability.NewSlogLogger(slog.New(handler)), nil
}

// setupMetrics serves Prometheus metrics when an address is configured.
// The returned function stops the server.
//
//nolint:ireturn // Returns the observability.MetricsRecorder interface the client consumes
func setupMetrics(cfg config.MetricsConfig, logger observability.Logger) (observability.MetricsRecorder, func(), error) {
	if cfg.Addr == "" {
		return observability.NoopMetricsRecorder(), func() {}, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder, err := prommetrics.NewRecorder(reg)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server exited", observability.Field{Key: "error", Value: err.Error()})
		}
	}()

	logger.Info("serving metrics", observability.Field{Key: "addr", Value: cfg.Addr})

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown failed", observability.Field{Key: "error", Value: err.Error()})
		}
	}

	return recorder, shutdown, nil
}
