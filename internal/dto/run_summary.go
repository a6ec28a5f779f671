package dto

import "time"

// RunSummary describes one pass of the display loop over a frame source.
type RunSummary struct {
	Source        string
	Frames        int
	LastCount     int
	PeakCount     int
	StoppedByUser bool
	Duration      time.Duration
}
