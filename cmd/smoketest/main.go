package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/az-ai-labs/numrec/config"
	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/internal/logging"
	"github.com/az-ai-labs/numrec/recognizer"
)

const (
	chunkSize      = 4 << 20 // 4 MB per read chunk
	maxWorkers     = 4
	minArgs        = 2
	maxArgs        = 3
	bytesToMBShift = 20
	outlierFactor  = 3
)

type fileDensity struct {
	path    string
	lines   int
	results int
	density float64
}

type Stats struct {
	mu             sync.Mutex
	filesScanned   int
	totalBytes     int64
	lines          int
	skippedLines   int
	invariantOK    int
	invariantFail  int
	densityOutlier int
	typeCounts     map[extractor.Type]int
	tagCounts      map[extractor.Tag]int
	densities      []fileDensity
}

type fileState struct {
	path          string
	rec           *recognizer.Recognizer
	maxLine       int
	totalBytes    int64
	lines         int
	skippedLines  int
	results       int
	invalidFailed bool
	invalidLogged bool
	typeCounts    map[extractor.Type]int
	tagCounts     map[extractor.Tag]int
}

func main() {
	if len(os.Args) < minArgs || len(os.Args) > maxArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s <directory> [config.yaml]\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	rec, err := recognizer.New(cfg, logger)
	if err != nil {
		logger.Fatal("building recognizer", zap.Error(err))
	}

	dirPath := os.Args[1]
	stats := &Stats{
		typeCounts: make(map[extractor.Type]int),
		tagCounts:  make(map[extractor.Tag]int),
	}

	var filePaths []string
	err = filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".txt") {
			return nil
		}
		filePaths = append(filePaths, path)
		return nil
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to process (mode %s)\n", len(filePaths), cfg.Mode)
	start := time.Now()

	semaphore := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for _, path := range filePaths {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			processFile(p, rec, cfg.MaxInputBytes, stats)
		}(path)
	}

	wg.Wait()

	flagDensityOutliers(stats)

	fmt.Fprintf(os.Stderr, "\nCompleted in %s\n\n", time.Since(start).Round(time.Millisecond))
	printStats(stats)
}

func loadConfig(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.Load(nil)
	}
	return config.LoadFile(args[0])
}

func processFile(path string, rec *recognizer.Recognizer, maxLine int, stats *Stats) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error stat %s: %v\n", path, err)
		return
	}
	fileSize := info.Size()
	fmt.Fprintf(os.Stderr, "START %s (%d MB)\n", path, fileSize>>bytesToMBShift)
	fileStart := time.Now()

	state := &fileState{
		path:       path,
		rec:        rec,
		maxLine:    maxLine,
		typeCounts: make(map[extractor.Type]int),
		tagCounts:  make(map[extractor.Tag]int),
	}

	buf := make([]byte, chunkSize)
	var leftover []byte

	for {
		n, err := f.Read(buf)
		if n > 0 {
			leftover = append(leftover, buf[:n]...)
			chunk := leftover

			if err == nil {
				if idx := bytes.LastIndexByte(chunk, '\n'); idx > 0 {
					leftover = make([]byte, len(chunk)-idx-1)
					copy(leftover, chunk[idx+1:])
					chunk = chunk[:idx+1]
				} else {
					leftover = chunk
					continue
				}
			} else {
				leftover = nil
			}

			state.processChunk(chunk)
		}

		if err != nil {
			break
		}
	}

	if len(leftover) > 0 {
		state.processChunk(leftover)
	}

	fmt.Fprintf(os.Stderr, "DONE  %s in %s (%d MB processed)\n",
		filepath.Base(path), time.Since(fileStart).Round(time.Millisecond), state.totalBytes>>bytesToMBShift)

	mergeFileState(state, stats)
}

func (fs *fileState) processChunk(chunk []byte) {
	fs.totalBytes += int64(len(chunk))

	for line := range strings.Lines(string(chunk)) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fs.lines++
		if len(line) > fs.maxLine {
			fs.skippedLines++
			continue
		}

		results := fs.rec.Recognize(line)
		fs.results += len(results)
		for _, r := range results {
			fs.typeCounts[r.Type]++
			fs.tagCounts[r.Data]++
		}

		if fs.invalidFailed {
			continue
		}
		if msg := checkResults(line, results); msg != "" {
			fs.invalidFailed = true
			if !fs.invalidLogged {
				fmt.Fprintf(os.Stderr, "INVARIANT_FAIL: %s: %s\n", fs.path, msg)
				fs.invalidLogged = true
			}
		}
	}
}

// checkResults returns a description of the first broken result invariant,
// or "" when results are in bounds, sorted, non-overlapping, and match the
// text at their offsets.
func checkResults(line string, results []extractor.Result) string {
	prevEnd := 0
	for i, r := range results {
		switch {
		case r.Start < prevEnd:
			return fmt.Sprintf("result %d %s overlaps or precedes the previous one", i, r)
		case r.Start >= r.End || r.End > len(line):
			return fmt.Sprintf("result %d %s has invalid offsets (len %d)", i, r, len(line))
		case line[r.Start:r.End] != r.Text:
			return fmt.Sprintf("result %d %s does not match text %q", i, r, line[r.Start:r.End])
		}
		prevEnd = r.End
	}
	return ""
}

func mergeFileState(fs *fileState, stats *Stats) {
	stats.mu.Lock()
	defer stats.mu.Unlock()

	stats.filesScanned++
	stats.totalBytes += fs.totalBytes
	stats.lines += fs.lines
	stats.skippedLines += fs.skippedLines

	if fs.invalidFailed {
		stats.invariantFail++
	} else {
		stats.invariantOK++
	}

	for typ, count := range fs.typeCounts {
		stats.typeCounts[typ] += count
	}
	for tag, count := range fs.tagCounts {
		stats.tagCounts[tag] += count
	}

	density := 0.0
	if fs.lines > 0 {
		density = float64(fs.results) / float64(fs.lines)
	}
	stats.densities = append(stats.densities, fileDensity{
		path:    fs.path,
		lines:   fs.lines,
		results: fs.results,
		density: density,
	})
}

// flagDensityOutliers computes the median results-per-line density across all
// files and flags any file whose density exceeds 3x the median.
func flagDensityOutliers(stats *Stats) {
	if len(stats.densities) == 0 {
		return
	}

	values := make([]float64, len(stats.densities))
	for i, fd := range stats.densities {
		values[i] = fd.density
	}
	med := computeMedian(values)

	for _, fd := range stats.densities {
		if med > 0 && fd.density > outlierFactor*med {
			stats.densityOutlier++
			fmt.Fprintf(os.Stderr, "DENSITY_OUTLIER: %s: %d results / %d lines (density %.2f, median %.2f)\n",
				fd.path, fd.results, fd.lines, fd.density, med)
		}
	}
}

func computeMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2 //nolint:mnd // arithmetic mean of two middle values
	}
	return sorted[mid]
}

func printStats(stats *Stats) {
	fmt.Printf("Files scanned:           %d\n", stats.filesScanned)
	fmt.Printf("Total bytes:             %d\n", stats.totalBytes)
	fmt.Printf("Lines:                   %d\n", stats.lines)
	fmt.Printf("Lines over size limit:   %d\n", stats.skippedLines)
	fmt.Printf("Invariants OK:           %d\n", stats.invariantOK)
	fmt.Printf("Invariants FAIL:         %d\n", stats.invariantFail)
	fmt.Printf("Density outliers:        %d\n", stats.densityOutlier)
	fmt.Println()

	total := 0
	for _, count := range stats.typeCounts {
		total += count
	}

	fmt.Println("Result type distribution:")
	for _, typ := range []extractor.Type{extractor.Number, extractor.Ordinal, extractor.Percentage} {
		printShare(typ.String(), stats.typeCounts[typ], total)
	}

	fmt.Println("Tag distribution:")
	for _, tag := range []extractor.Tag{
		extractor.IntegerNum, extractor.IntegerEng,
		extractor.DoubleNum, extractor.DoubleEng, extractor.DoublePow,
		extractor.FracNum, extractor.FracArb, extractor.FracEng,
		extractor.OrdinalArb,
	} {
		printShare(string(tag), stats.tagCounts[tag], total)
	}
}

func printShare(label string, count, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(count) / float64(total) * 100
	}
	fmt.Printf("  %-15s %d  (%.1f%%)\n", label+":", count, percentage)
}
