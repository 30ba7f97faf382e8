package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/store/internal/errors"
	"github.com/vango-dev/store/pkg/store"
	"github.com/vango-dev/store/pkg/vango"
)

type benchConfig struct {
	Consumers   int
	Updates     int
	FlushEvery  int
	Namespace   string
	Subsystem   string
	ConstLabels map[string]string
	Buckets     []float64
	TracerName  string
	Budget      int
}

type benchReport struct {
	Consumers   int     `json:"consumers"`
	Updates     int     `json:"updates"`
	Renders     uint64  `json:"renders"`
	FinalCount  int     `json:"final_count"`
	DurationMS  float64 `json:"duration_ms"`
	UpdatesPerS float64 `json:"updates_per_sec"`
	LatencyUS   struct {
		P50 float64 `json:"p50"`
		P95 float64 `json:"p95"`
		P99 float64 `json:"p99"`
		Max float64 `json:"max"`
	} `json:"latency_us"`
}

func benchCmd(a *app) *cobra.Command {
	var (
		consumers   int
		updates     int
		flushEvery  int
		metricsAddr string
		jsonOutput  string
		hold        bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load-test a store with many consumers",
		Long: `Mount many consumers of one store, drive updates through their
setters, and report latency and render counts.

With --metrics-addr the store metrics are served at /metrics while the
bench runs (and afterwards with --hold, until interrupted).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := benchConfig{
				Consumers:   a.cfg.Bench.Consumers,
				Updates:     a.cfg.Bench.Updates,
				FlushEvery:  flushEvery,
				Namespace:   a.cfg.Metrics.Namespace,
				Subsystem:   a.cfg.Metrics.Subsystem,
				ConstLabels: a.cfg.Metrics.ConstLabels,
				Buckets:     a.cfg.Metrics.Buckets,
				TracerName:  a.cfg.Tracing.TracerName,
				Budget:      a.cfg.Runtime.RenderBudget,
			}
			if cmd.Flags().Changed("consumers") {
				cfg.Consumers = consumers
			}
			if cmd.Flags().Changed("updates") {
				cfg.Updates = updates
			}
			addr := a.cfg.Metrics.Addr
			if cmd.Flags().Changed("metrics-addr") {
				addr = metricsAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			if addr != "" {
				shutdown, err := serveMetrics(addr, reg, a.logger)
				if err != nil {
					return err
				}
				defer shutdown()
				info(cmd, "metrics at http://%s/metrics", addr)
			}

			report, err := runBench(ctx, cfg, reg, a.logger)
			if err != nil {
				return err
			}

			writeSummary(cmd.OutOrStdout(), report)
			if jsonOutput != "" {
				if err := writeJSON(cmd.OutOrStdout(), jsonOutput, report); err != nil {
					return err
				}
			}

			if hold && addr != "" {
				info(cmd, "holding metrics server, press Ctrl+C to exit")
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&consumers, "consumers", 0, "Number of mounted consumers (default from config)")
	cmd.Flags().IntVar(&updates, "updates", 0, "Number of setter calls (default from config)")
	cmd.Flags().IntVar(&flushEvery, "flush-every", 1, "Flush the runtime after this many updates")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics on this address")
	cmd.Flags().StringVar(&jsonOutput, "json", "", "Write the JSON report to this path (- for stdout)")
	cmd.Flags().BoolVar(&hold, "hold", false, "Keep the metrics server running after the bench")

	return cmd
}

// runBench mounts cfg.Consumers consumers of a counter store and calls
// their setters round-robin. Each consumer's setter is captured right after
// it mounts, while the state's action is still bound to it.
func runBench(ctx context.Context, cfg benchConfig, reg prometheus.Registerer, logger *slog.Logger) (benchReport, error) {
	var report benchReport
	if cfg.Consumers < 1 {
		return report, errors.New("E101").WithDetail("bench needs at least one consumer")
	}
	if cfg.Updates < 0 {
		return report, errors.New("E101").WithDetail("bench updates must not be negative")
	}
	if cfg.FlushEvery < 1 {
		cfg.FlushEvery = 1
	}

	metricOpts := []store.MetricsOption{
		store.WithRegistry(reg),
		store.WithNamespace(cfg.Namespace),
		store.WithConstLabels(cfg.ConstLabels),
		store.WithBuckets(cfg.Buckets),
	}
	if cfg.Subsystem != "" {
		metricOpts = append(metricOpts, store.WithSubsystem(cfg.Subsystem))
	}
	metrics := store.NewMetrics(metricOpts...)
	useCounter := newCounterStore(
		store.Name("bench"),
		store.WithLogger(logger),
		store.WithMetrics(metrics),
		store.WithTracer(otel.Tracer(cfg.TracerName)),
		store.PreserveOnRemount(),
	)

	rt := vango.NewRuntime(vango.WithRenderBudget(cfg.Budget), vango.WithLogger(logger))
	defer rt.Dispose()

	consumer := vango.Func(func() any {
		return store.Select(useCounter, func(s store.State) int {
			return store.Get[int](s, "count")
		})
	})

	actions := make([]func(), 0, cfg.Consumers)
	for i := 0; i < cfg.Consumers; i++ {
		rt.Mount(consumer)
		if err := rt.Flush(); err != nil {
			return report, err
		}
		actions = append(actions, store.Action(useCounter.Snapshot(), "increment"))
	}

	latencies := make([]time.Duration, 0, cfg.Updates)
	start := time.Now()
	for u := 0; u < cfg.Updates; u++ {
		if u%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return report, err
			}
		}

		t0 := time.Now()
		actions[u%len(actions)]()
		latencies = append(latencies, time.Since(t0))

		if (u+1)%cfg.FlushEvery == 0 {
			if err := rt.Flush(); err != nil {
				return report, err
			}
		}
	}
	if err := rt.Flush(); err != nil {
		return report, err
	}
	elapsed := time.Since(start)

	for _, inst := range rt.Instances() {
		report.Renders += inst.Renders()
	}
	report.Consumers = cfg.Consumers
	report.Updates = cfg.Updates
	report.FinalCount = store.Get[int](useCounter.Snapshot(), "count")
	report.DurationMS = ms(elapsed)
	if elapsed > 0 {
		report.UpdatesPerS = float64(cfg.Updates) / elapsed.Seconds()
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	report.LatencyUS.P50 = us(percentile(latencies, 0.50))
	report.LatencyUS.P95 = us(percentile(latencies, 0.95))
	report.LatencyUS.P99 = us(percentile(latencies, 0.99))
	report.LatencyUS.Max = us(percentile(latencies, 1))

	return report, nil
}

// newMetricsRouter routes /metrics and /healthz.
func newMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// serveMetrics starts the metrics server and returns its shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New("E120").Wrap(err)
	}

	srv := &http.Server{
		Handler:           newMetricsRouter(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Vango Store Benchmark ===")
	fmt.Fprintf(w, "Consumers: %d\n", report.Consumers)
	fmt.Fprintf(w, "Updates: %d\n", report.Updates)
	fmt.Fprintf(w, "Duration: %.2f ms\n", report.DurationMS)
	fmt.Fprintf(w, "Throughput: %.1f updates/s\n", report.UpdatesPerS)
	fmt.Fprintf(w, "Renders: %d\n", report.Renders)
	fmt.Fprintf(w, "Final count: %d\n", report.FinalCount)
	fmt.Fprintln(w)

	if report.LatencyUS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
		return
	}
	fmt.Fprintln(w, "Setter latency (merge + re-render request):")
	fmt.Fprintf(w, "  p50: %.2f us\n", report.LatencyUS.P50)
	fmt.Fprintf(w, "  p95: %.2f us\n", report.LatencyUS.P95)
	fmt.Fprintf(w, "  p99: %.2f us\n", report.LatencyUS.P99)
	fmt.Fprintf(w, "  max: %.2f us\n", report.LatencyUS.Max)
}

func writeJSON(stdout io.Writer, path string, report benchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
