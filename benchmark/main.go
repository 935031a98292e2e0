// Package main measures how long xssbench takes to build findings from batch documents.
// Each batch is built in whole-tree and diffs-only mode, first with the store disabled
// (every run scans every commit), then against a fresh SQLite store where the first run
// is cold and later runs only skip stored pairs. Results are written to a CSV file.
//
// Prerequisites:
// - xssbench and semgrep binaries available in PATH
// - A semgrep.yaml ruleset in the working directory (downloads are skipped)
//
// Usage: go run benchmark/main.go batch.json [batch.json...]
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Batch       string
	Mode        string
	Rows        int
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Batches     []string
	Timeout     time.Duration
	NoStoreRuns int
	StoreRuns   int
	Modes       map[string][]string
}

// buildSummary is the subset of 'xssbench build --output json' the benchmark reads.
type buildSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func main() {
	// Parse command line arguments
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s batch.json [batch.json...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Batches:     os.Args[1:],
		Timeout:     30 * time.Minute,
		NoStoreRuns: 2,
		StoreRuns:   3,
		Modes: map[string][]string{
			"tree":  nil,
			"diffs": {"--diffs-only"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binaries and batch documents exist
func checkPrerequisites(config BenchmarkConfig) error {
	for _, bin := range []string{"xssbench", "semgrep"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s binary not found in PATH", bin)
		}
	}

	for _, batch := range config.Batches {
		if _, err := os.Stat(batch); os.IsNotExist(err) {
			return fmt.Errorf("batch document not found at %s", batch)
		}
	}

	return nil
}

// runBenchmarks executes every mode against every batch
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d batches, %v timeout, no-store: %d runs, store: %d runs\n",
		len(config.Batches), config.Timeout, config.NoStoreRuns, config.StoreRuns)

	for _, batch := range config.Batches {
		fmt.Printf("Benchmarking %s\n", batch)
		for _, mode := range []string{"tree", "diffs"} {
			results = append(results, runBenchmarkSuite(config, batch, mode))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-store and store phases for one batch and mode
func runBenchmarkSuite(config BenchmarkConfig, batch, mode string) BenchmarkResult {
	fmt.Printf("Running %s build on %s\n", mode, batch)

	storeDir, err := os.MkdirTemp("", "xssbench-benchmark-*")
	if err != nil {
		fmt.Printf("  Warning: failed to create store dir: %v\n", err)
		return BenchmarkResult{Batch: batch, Mode: mode, NoStoreTime: "ERROR", ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(storeDir) }()

	// Helper to run a benchmark phase
	runPhase := func(storeArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string, rows int) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times, rows := runBenchmark(config, batch, append(storeArgs, config.Modes[mode]...), numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime, rows
	}

	// Phase 1: every run scans every commit
	_, noStoreAvg, rows := runPhase([]string{"--store-backend", "none"}, config.NoStoreRuns, "No-store")

	// Phase 2: the first run fills the store, later runs skip
	dbPath := filepath.Join(storeDir, "findings.db")
	coldTime, warmAvg, _ := runPhase([]string{"--store-backend", "sqlite", "--store-db-connect", dbPath}, config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Batch:       filepath.Base(batch),
		Mode:        mode,
		Rows:        rows,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes 'xssbench build' numRuns times and returns cold time, warm times and the batch size
func runBenchmark(config BenchmarkConfig, batch string, extraArgs []string, numRuns int) (coldTime float64, warmTimes []float64, rows int) {
	args := append([]string{"build", "--input", batch, "--skip-ruleset-download", "--output", "json"}, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("xssbench", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if summary, ok := parseSummary(output); cmdErr == nil && ok {
				times = append(times, time.Since(start).Seconds())
				rows = summary.Total
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// parseSummary reads the JSON build summary printed on stdout
func parseSummary(output []byte) (buildSummary, bool) {
	var summary buildSummary
	start := strings.IndexByte(string(output), '{')
	if start < 0 {
		return summary, false
	}
	if err := json.Unmarshal(output[start:], &summary); err != nil {
		return summary, false
	}
	return summary, true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("xssbench_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"batch", "mode", "rows", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{result.Batch, result.Mode, fmt.Sprint(result.Rows), result.NoStoreTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printModeSummary(results, "tree", "Whole-tree scans:")
	printModeSummary(results, "diffs", "Changed-file scans:")
}

// printModeSummary displays results for one scan mode
func printModeSummary(results []BenchmarkResult, mode, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Mode == mode {
			fmt.Printf("  %-20s (%d rows): No-store: %s, Cold: %s, Warm: %s\n", result.Batch, result.Rows, result.NoStoreTime, result.ColdTime, result.WarmTime)
		}
	}
}
