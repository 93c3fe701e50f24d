//go:build ignore

package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/muurk/aiobridge/internal/events"
	"github.com/muurk/aiobridge/internal/wire"
)

// Statistics tracks decoding results
type Statistics struct {
	TotalLines    int
	Ignored       int
	DecodeSuccess int
	DecodeFailure int
	Sent          int
	Keys          map[string]int
	Failures      []Failure
}

// Failure stores one line that could not be decoded
type Failure struct {
	LineNumber int
	Raw        string
	Error      string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: replay_events <capture-file> [host:port]")
		fmt.Println("Example: replay_events events.txt")
		fmt.Println("         replay_events events.txt 127.0.0.1:1902")
		fmt.Println()
		fmt.Println("Each line of the capture is one event datagram. With host:port every")
		fmt.Println("line is also sent there over UDP, e.g. to a running bridge.")
		os.Exit(1)
	}

	var conn net.Conn
	if len(os.Args) > 2 {
		var err error
		conn, err = net.Dial("udp4", os.Args[2])
		if err != nil {
			fmt.Printf("Error dialing %s: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		defer conn.Close()
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error opening capture: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	stats := Statistics{Keys: make(map[string]int)}

	fmt.Printf("=== AIO Event Replay ===\n\n")

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		stats.TotalLines++
		raw := []byte(line)

		if conn != nil {
			if _, err := conn.Write(raw); err != nil {
				fmt.Printf("Error sending line %d: %v\n", lineNum, err)
			} else {
				stats.Sent++
			}
		}

		if !wire.HasEventPrefix(raw) {
			stats.Ignored++
			continue
		}

		ev, err := wire.ParseEvent(raw)
		if err != nil {
			stats.DecodeFailure++
			stats.Failures = append(stats.Failures, Failure{LineNumber: lineNum, Raw: line, Error: err.Error()})
			continue
		}
		stats.DecodeSuccess++
		for _, u := range events.Route(ev) {
			stats.Keys[u.Key]++
			fmt.Printf("%5d  %s\n", lineNum, u)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading capture: %v\n", err)
		os.Exit(1)
	}

	printStatistics(&stats)
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Lines:    %d\n", stats.TotalLines)
	fmt.Printf("Ignored:  %d (no event prefix)\n", stats.Ignored)
	fmt.Printf("Decoded:  %d\n", stats.DecodeSuccess)
	fmt.Printf("Failed:   %d\n", stats.DecodeFailure)
	if stats.Sent > 0 {
		fmt.Printf("Sent:     %d\n", stats.Sent)
	}

	if len(stats.Keys) > 0 {
		fmt.Printf("\nUpdates by key:\n")
		keys := make([]string, 0, len(stats.Keys))
		for k := range stats.Keys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-16s %d\n", k, stats.Keys[k])
		}
	}

	if len(stats.Failures) > 0 {
		fmt.Printf("\nFailures:\n")
		for _, f := range stats.Failures {
			fmt.Printf("  line %d: %s\n    %s\n", f.LineNumber, f.Error, f.Raw)
		}
	}
}
