package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/store/internal/config"
	"github.com/vango-dev/store/internal/errors"
)

func demoRows(t *testing.T, out string) map[string][]string {
	t.Helper()
	rows := make(map[string][]string)
	for _, line := range strings.Split(out, "\n") {
		for _, step := range []string{"mount A", "increment via A", "mount B", "increment via B"} {
			if strings.HasPrefix(line, step) {
				rows[step] = strings.Fields(strings.TrimPrefix(line, step))
			}
		}
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 demo rows, got %d:\n%s", len(rows), out)
	}
	return rows
}

func TestRunDemo(t *testing.T) {
	var buf bytes.Buffer
	if err := runDemo(&buf, demoOptions{budget: 100}); err != nil {
		t.Fatalf("runDemo: %v", err)
	}

	rows := demoRows(t, buf.String())
	want := map[string][]string{
		"mount A":         {"0", "2", "-"},
		"increment via A": {"1", "3", "-"},
		"mount B":         {"0", "3", "2"},
		"increment via B": {"1", "3", "3"},
	}
	for step, cols := range want {
		if strings.Join(rows[step], " ") != strings.Join(cols, " ") {
			t.Errorf("%s = %v, want %v", step, rows[step], cols)
		}
	}
}

func TestRunDemoPreserve(t *testing.T) {
	var buf bytes.Buffer
	if err := runDemo(&buf, demoOptions{preserve: true, budget: 100}); err != nil {
		t.Fatalf("runDemo: %v", err)
	}

	rows := demoRows(t, buf.String())
	if rows["mount B"][0] != "1" {
		t.Errorf("count after mount B = %s, want 1", rows["mount B"][0])
	}
	if rows["increment via B"][0] != "2" {
		t.Errorf("count after second increment = %s, want 2", rows["increment via B"][0])
	}
}

func TestRunBench(t *testing.T) {
	reg := prometheus.NewRegistry()
	report, err := runBench(context.Background(), benchConfig{
		Consumers:  4,
		Updates:    40,
		FlushEvery: 1,
		Namespace:  "benchtest",
		TracerName: "test",
		Budget:     100,
	}, reg, nil)
	if err != nil {
		t.Fatalf("runBench: %v", err)
	}

	if report.FinalCount != 40 {
		t.Errorf("FinalCount = %d, want 40", report.FinalCount)
	}
	// Two renders per mount, one per flushed update.
	if report.Renders != 4*2+40 {
		t.Errorf("Renders = %d, want %d", report.Renders, 4*2+40)
	}
	if report.LatencyUS.Max < report.LatencyUS.P50 {
		t.Errorf("latency max %v below p50 %v", report.LatencyUS.Max, report.LatencyUS.P50)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "benchtest_store_updates_total" {
			found = true
			if got := f.GetMetric()[0].GetCounter().GetValue(); got != 40 {
				t.Errorf("updates_total = %v, want 40", got)
			}
		}
	}
	if !found {
		t.Error("benchtest_store_updates_total not registered")
	}
}

func TestRunBenchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runBench(ctx, benchConfig{Consumers: 1, Updates: 10, Namespace: "cancelled", Budget: 10},
		prometheus.NewRegistry(), nil)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := runBench(context.Background(), benchConfig{
		Consumers: 1, Updates: 1, Namespace: "routed", Budget: 10,
	}, reg, nil); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(newMetricsRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "routed_store_updates_total") {
		t.Errorf("/metrics missing store counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{0.5, 5},
		{0.95, 10},
		{1, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 0.5) != 0 {
		t.Error("empty percentile should be 0")
	}
}

func TestWriteJSON(t *testing.T) {
	var report benchReport
	report.Updates = 3

	path := filepath.Join(t.TempDir(), "report.json")
	if err := writeJSON(io.Discard, path, report); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded benchReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Updates != 3 {
		t.Errorf("Updates = %d, want 3", decoded.Updates)
	}
}

func executeCmd(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	if got := strings.TrimSpace(executeCmd(t, "version", "--short")); got != version {
		t.Errorf("version --short = %q, want %q", got, version)
	}
}

func TestDemoCommand(t *testing.T) {
	out := executeCmd(t, "demo", "--config-dir", t.TempDir())
	if !strings.Contains(out, "increment via B") || !strings.Contains(out, "demo complete") {
		t.Errorf("demo output:\n%s", out)
	}
}

func TestBenchCommandJSON(t *testing.T) {
	out := executeCmd(t, "bench", "--config-dir", t.TempDir(), "--consumers", "2", "--updates", "6", "--json", "-")

	idx := strings.Index(out, "{")
	if idx < 0 {
		t.Fatalf("no JSON in output:\n%s", out)
	}
	var report benchReport
	if err := json.Unmarshal([]byte(out[idx:]), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Consumers != 2 || report.FinalCount != 6 {
		t.Errorf("report = %+v", report)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"demo", "--config-dir", dir})

	err := cmd.Execute()
	if errors.CodeOf(err) != "E100" {
		t.Errorf("err = %v, want E100", err)
	}
}

func TestBenchZeroConsumersFails(t *testing.T) {
	_, err := runBench(context.Background(), benchConfig{Updates: 1}, prometheus.NewRegistry(), nil)
	if errors.CodeOf(err) != "E101" {
		t.Errorf("err = %v, want E101", err)
	}
}

func TestBenchNegativeUpdatesFails(t *testing.T) {
	_, err := runBench(context.Background(), benchConfig{Consumers: 1, Updates: -1, Budget: 10},
		prometheus.NewRegistry(), nil)
	if errors.CodeOf(err) != "E101" {
		t.Errorf("err = %v, want E101", err)
	}

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"bench", "--config-dir", t.TempDir(), "--consumers", "1", "--updates", "-1"})
	if err := cmd.Execute(); errors.CodeOf(err) != "E101" {
		t.Errorf("bench --updates -1: err = %v, want E101", err)
	}
}

func TestRunBenchMetricOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := runBench(context.Background(), benchConfig{
		Consumers:   1,
		Updates:     3,
		Namespace:   "benchtest",
		Subsystem:   "cart",
		ConstLabels: map[string]string{"env": "test"},
		Buckets:     []float64{0.001, 1},
		Budget:      10,
	}, reg, nil)
	if err != nil {
		t.Fatalf("runBench: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "benchtest_cart_update_duration_seconds" {
			continue
		}
		found = true
		m := f.GetMetric()[0]
		if got := len(m.GetHistogram().GetBucket()); got != 2 {
			t.Errorf("buckets = %d, want 2", got)
		}
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["env"] != "test" || labels["store"] != "bench" {
			t.Errorf("labels = %v, want env=test store=bench", labels)
		}
	}
	if !found {
		t.Error("benchtest_cart_update_duration_seconds not registered")
	}
}
