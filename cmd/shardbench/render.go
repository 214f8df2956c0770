package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/schollz/progressbar/v3"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func formatNumber(n int) string {
	s := strconv.Itoa(n)
	var sb strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func printConfiguration(out io.Writer, cfg *Config) {
	_, _ = bold.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Operation:   %s\n", cfg.Operation)
	fmt.Fprintf(out, "  Elements:    %s\n", formatNumber(cfg.Elements))
	fmt.Fprintf(out, "  Work:        %d rounds per element\n", cfg.Work)
	fmt.Fprintf(out, "  Threads:     %v\n", cfg.Threads)
	fmt.Fprintf(out, "  Modes:       %s\n", strings.Join(cfg.modes(), ", "))
	if slices.Contains(cfg.modes(), modePooled) {
		fmt.Fprintf(out, "  Pool size:   %d workers (%d CPU cores)\n", cfg.Workers, runtime.NumCPU())
	}
	fmt.Fprintf(out, "  Iterations:  %d (+%d warmup)\n", cfg.Iterations, cfg.Warmup)
	fmt.Fprintln(out)
}

func makeProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Benchmarking"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// printResults renders one row per configuration, ordered by mode and then
// thread count, and highlights the fastest configuration.
func printResults(out io.Writer, cfg *Config, results []Result) {
	fastest := results[0]
	for _, r := range results[1:] {
		if r.Median < fastest.Median {
			fastest = r
		}
	}

	fmt.Fprintln(out)
	_, _ = bold.Fprintf(out, "Results: %s over %s elements\n", cfg.Operation, formatNumber(cfg.Elements))
	fmt.Fprintln(out)

	table := tablewriter.NewWriter(out)
	table.Header("Mode", "Threads", "Median", "Min", "Max", "M elems/sec", "Speedup")
	for _, r := range results {
		throughput := 0.0
		if r.Median > 0 {
			throughput = float64(cfg.Elements) / r.Median.Seconds() / 1_000_000
		}
		mode := r.Mode
		if r == fastest {
			mode = green.Sprint(r.Mode + " *")
		}
		_ = table.Append(
			mode,
			strconv.Itoa(r.Threads),
			r.Median.Round(time.Microsecond).String(),
			r.Min.Round(time.Microsecond).String(),
			r.Max.Round(time.Microsecond).String(),
			fmt.Sprintf("%.1f", throughput),
			fmt.Sprintf("%.2fx", r.Speedup),
		)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Fprintf(out, "Error rendering results: %v\n", err)
	}
}

// printMetrics writes every gathered metric family in the Prometheus text
// format.
func printMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	fmt.Fprintln(out)
	_, _ = bold.Fprintln(out, "Worker pool metrics:")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
