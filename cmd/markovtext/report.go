package main

import (
	"fmt"
	"time"
)

// startLayout is the layout of the start timestamp, with milliseconds.
const startLayout = "2006-01-02 15:04:05.000"

// formatElapsed renders d in the largest unit it exceeds: sec, ms, mcs or ns.
func formatElapsed(d time.Duration) string {
	ns := d.Nanoseconds()
	switch {
	case ns > 1_000_000_000:
		return fmt.Sprintf("%.2f sec", float64(ns)/1_000_000_000.0)
	case ns > 1_000_000:
		return fmt.Sprintf("%.2f ms", float64(ns)/1_000_000.0)
	case ns > 1_000:
		return fmt.Sprintf("%.2f mcs", float64(ns)/1_000.0)
	default:
		return fmt.Sprintf("%d ns", ns)
	}
}

// since formats the time elapsed since from.
func since(from time.Time) string {
	return formatElapsed(time.Since(from))
}
