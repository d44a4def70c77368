//go:build ignore

// Decode-capture replays captured Firmata byte streams through the decoder
// and reports what they contain.
//
// A capture file is hex text: whitespace between bytes is ignored and '#'
// comments out the rest of a line, so raw `xxd -p` output and annotated
// captures both decode as-is. Useful for checking what a board actually
// sent, and for confirming the decoder handles a capture end to end.
//
// Usage:
//
//	go run tools/decode-capture.go <file-or-directory> [...]
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muurk/firmata/protocol"
)

// Statistics tracks decoding results across all capture files.
type Statistics struct {
	TotalFiles    int
	TotalBytes    int
	TotalMessages int
	DecodeErrors  int
	Kinds         map[protocol.Kind]int
	Failures      []Failure
}

// Failure records one capture that did not decode cleanly.
type Failure struct {
	File  string
	After int // messages decoded before the failure
	Error string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-capture <file-or-directory> [...]")
		fmt.Println("Example: decode-capture captures/")
		fmt.Println("         decode-capture boot.hex analog-sweep.hex")
		os.Exit(1)
	}

	var files []string
	for _, path := range os.Args[1:] {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Printf("Error accessing %s: %v\n", path, err)
			os.Exit(1)
		}
		if info.IsDir() {
			found, err := filepath.Glob(filepath.Join(path, "*.hex"))
			if err != nil {
				fmt.Printf("Error searching %s: %v\n", path, err)
				os.Exit(1)
			}
			if len(found) == 0 {
				fmt.Printf("No .hex capture files found in %s\n", path)
				os.Exit(1)
			}
			files = append(files, found...)
		} else {
			files = append(files, path)
		}
	}

	stats := Statistics{Kinds: make(map[protocol.Kind]int)}

	fmt.Printf("=== Firmata Capture Decoder ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	for _, file := range files {
		processFile(file, &stats)
	}

	printStatistics(&stats)

	if stats.DecodeErrors > 0 {
		os.Exit(1)
	}
}

func processFile(filename string, stats *Statistics) {
	stats.TotalFiles++

	raw, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", filename, err)
		stats.DecodeErrors++
		return
	}

	data, err := parseHex(string(raw))
	if err != nil {
		fmt.Printf("Error parsing %s: %v\n", filename, err)
		stats.DecodeErrors++
		return
	}
	stats.TotalBytes += len(data)

	decoder := protocol.NewDecoder(protocol.NewRegistry(), bytes.NewReader(data))
	decoded := 0
	for {
		msg, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.DecodeErrors++
			stats.Failures = append(stats.Failures, Failure{
				File:  filename,
				After: decoded,
				Error: err.Error(),
			})
			break
		}
		decoded++
		stats.TotalMessages++
		stats.Kinds[msg.MessageKind()]++
	}

	fmt.Printf("%-40s %6d bytes  %5d messages\n", filepath.Base(filename), len(data), decoded)
}

// parseHex decodes hex text: '#' comments out the rest of a line and all
// whitespace is ignored.
func parseHex(text string) ([]byte, error) {
	var digits strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			digits.WriteString(field)
		}
	}
	return hex.DecodeString(digits.String())
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("DECODE RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Total Bytes:        %d\n", stats.TotalBytes)
	fmt.Printf("Total Messages:     %d\n", stats.TotalMessages)
	fmt.Printf("Decode Errors:      %d\n", stats.DecodeErrors)

	if len(stats.Kinds) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("MESSAGE KIND DISTRIBUTION\n")
		fmt.Printf("----------------------------------------\n")
		kinds := make([]string, 0, len(stats.Kinds))
		for kind := range stats.Kinds {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("%-24s %d\n", kind, stats.Kinds[protocol.Kind(kind)])
		}
	}

	if len(stats.Failures) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("FAILURES\n")
		fmt.Printf("----------------------------------------\n")
		for _, failure := range stats.Failures {
			fmt.Printf("%s: after %d messages: %s\n",
				failure.File, failure.After, failure.Error)
		}
	}
}
