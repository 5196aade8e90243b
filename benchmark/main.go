// Package main provides a performance benchmarking tool for the trendgate CLI.
// It generates product sheets of increasing size and measures execution times of
// the analyze and cycle commands, running each test multiple times, treating the
// first successful run as cold and averaging the rest as warm, and writes a CSV
// summary for performance analysis and documentation.
//
// Prerequisites:
// - trendgate binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the generated sheets and cache database are kept
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Sheet       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	SheetSizes  []int
	Years       int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		SheetSizes:  []int{100, 1000, 10000},
		Years:       4,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("trendgate", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the trendgate binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("trendgate"); err != nil {
		return fmt.Errorf("trendgate binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates every sheet and benchmarks both commands against it
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sheets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.SheetSizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.SheetSizes {
		sheet := fmt.Sprintf("rows-%d", size)
		sheetPath := filepath.Join(config.WorkDir, sheet+".json")
		if err := generateSheet(sheetPath, size, config.Years); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", sheet, err)
		}
		fmt.Printf("Benchmarking %s\n", sheet)

		results = append(results, runBenchmarkSuite(config, sheet, sheetPath, "analyze", "row analysis"))
		results = append(results, runBenchmarkSuite(config, sheet, sheetPath, "cycle", "cycle detection"))
	}

	return results, nil
}

// generateSheet writes size product rows with random seasonal keyword data.
func generateSheet(path string, size, years int) error {
	subCategories := []string{"plates", "banners", "balloons", "napkins"}
	rows := make([]map[string]any, size)
	for i := range rows {
		peak := rand.IntN(12)
		values := make([]float64, years*12)
		for m := range values {
			v := 10 + rand.Float64()*5
			if m%12 == peak || m%12 == (peak+1)%12 {
				v *= 8
			}
			values[m] = v
		}
		rows[i] = map[string]any{
			"id":            fmt.Sprintf("p%d", i+1),
			"title":         fmt.Sprintf("%dpcs party set %d", 12*(1+rand.IntN(8)), i+1),
			"main_category": "toys&games",
			"sub_category":  subCategories[rand.IntN(len(subCategories))],
			"price":         fmt.Sprintf("$%.2f", 5+rand.Float64()*20),
			"keywords": map[string]any{
				"start":  "2021-01",
				"series": []map[string]any{{"keyword": fmt.Sprintf("keyword %d", i+1), "values": values}},
			},
		}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, sheet, sheetPath, command, description string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, sheet)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, sheetPath, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Sheet:       sheet,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a trendgate command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, sheetPath, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, sheetPath, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers), "--limit", "10"}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("trendgate", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	completionPhrase := "Analysis completed in"
	if command == "cycle" {
		completionPhrase = "Detected cycles for"
	}
	return strings.Contains(string(output), completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/trendgate_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"sheet", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Sheet, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "analyze", "Row Analysis:")
	printCommandSummary(results, "cycle", "Cycle Detection:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Sheet, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
