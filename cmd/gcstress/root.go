package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/gcarena"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	jsonOut     bool
	showMetrics bool

	flagOps       int
	flagThreshold int
	flagSlotSize  int
	flagChunkSize int
	flagMaxChunks int
	flagSeed      uint64
	flagDebug     bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gcstress",
		Short: "Stress a collected cons-list heap and verify reclamation",
		Long: `gcstress runs a random workload of cons and unpin operations against a
cons-list heap backed by gcarena, runs a final collection, and checks that
every unreachable cell was reported dead exactly once and no reachable cell
was reported dead at all.

Example:
  gcstress --ops 100000 --threshold 512
  gcstress --config stress.toml --json
  gcstress --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd, cmd.OutOrStdout())
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every collection cycle")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print the exported Prometheus metrics")
	cmd.Flags().IntVar(&flagOps, "ops", 0, "Number of operations (default 10000)")
	cmd.Flags().IntVar(&flagThreshold, "threshold", 0, "Allocations between automatic cycles, 0 disables (default 256)")
	cmd.Flags().IntVar(&flagSlotSize, "slot-size", 0, "Slot size in bytes, at least one cell (default 16)")
	cmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "Chunk size in bytes")
	cmd.Flags().IntVar(&flagMaxChunks, "max-chunks", 0, "Chunk limit, 0 is unlimited")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Random seed (default 1)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Panic on marking contract violations")
	return cmd
}

func runStress(cmd *cobra.Command, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("ops") {
		cfg.Ops = flagOps
	}
	if flags.Changed("threshold") {
		cfg.Threshold = flagThreshold
	}
	if flags.Changed("slot-size") {
		cfg.SlotSize = flagSlotSize
	}
	if flags.Changed("max-chunks") {
		cfg.MaxChunks = flagMaxChunks
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = flagChunkSize
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := cfg.Log.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	heap, err := cfg.newHeap(log)
	if err != nil {
		return fmt.Errorf("failed to create heap: %w", err)
	}
	defer heap.Close()

	rep, err := run(cfg, heap, log)
	if err != nil {
		return err
	}

	var metrics map[string]float64
	if showMetrics {
		if metrics, err = gatherMetrics(heap.Arena()); err != nil {
			return err
		}
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Report
			Metrics map[string]float64 `json:"metrics,omitempty"`
		}{rep, metrics}); err != nil {
			return err
		}
	} else {
		printReport(out, rep, metrics)
	}

	if rep.Violations > 0 {
		return fmt.Errorf("%d violations: %s", rep.Violations, rep.FirstIssue)
	}
	return nil
}

// gatherMetrics collects the arena's Prometheus metrics into name/value pairs.
func gatherMetrics(a *gcarena.Arena) (map[string]float64, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(gcarena.NewCollector("gcstress", a)); err != nil {
		return nil, err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%q}", l.GetName(), l.GetValue())
			}
			if g := m.GetGauge(); g != nil {
				out[name] = g.GetValue()
			} else if c := m.GetCounter(); c != nil {
				out[name] = c.GetValue()
			}
		}
	}
	return out, nil
}

func printReport(out io.Writer, rep Report, metrics map[string]float64) {
	fmt.Fprintf(out, "Operations:   %d\n", rep.Ops)
	fmt.Fprintf(out, "Cells:        %d created, %d reachable, %d dead\n", rep.Created, rep.Reachable, rep.Dead)
	fmt.Fprintf(out, "Roots:        %d\n", rep.Roots)
	fmt.Fprintf(out, "Cycles:       %d (%d automatic)\n", rep.Cycles, rep.AutoCycles)
	fmt.Fprintf(out, "Chunks:       %d (%s utilized)\n", rep.Chunks, rep.Utilization)
	fmt.Fprintf(out, "Slot size:    %d bytes\n", rep.SlotSize)
	fmt.Fprintf(out, "Violations:   %d\n", rep.Violations)
	if len(metrics) == 0 {
		return
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "\nMetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s %g\n", name, metrics[name])
	}
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
