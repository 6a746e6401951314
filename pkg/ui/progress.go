package ui

import (
	"fmt"
	"time"
)

// Tracker keeps running totals for one harvest pass
type Tracker struct {
	Total     int
	Processed int
	Filled    int
	Empty     int
	StartTime time.Time
}

// NewTracker creates a tracker for a pass over total subjects
func NewTracker(total int) *Tracker {
	return &Tracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Record counts one processed subject
func (t *Tracker) Record(filled bool) {
	t.Processed++
	if filled {
		t.Filled++
	} else {
		t.Empty++
	}
}

// Elapsed returns the time since the pass started
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.StartTime)
}

// Rate returns the average pace in subjects per minute
func (t *Tracker) Rate() float64 {
	minutes := t.Elapsed().Minutes()
	if minutes == 0 {
		return 0
	}
	return float64(t.Processed) / minutes
}

// PrintSubject prints the subject about to be processed
func (t *Tracker) PrintSubject(index int, name string) {
	if IsQuietMode() {
		return
	}
	fmt.Printf("%s %s\n",
		Magenta(fmt.Sprintf("[%d/%d]", index+1, t.Total)),
		Cyan(name))
}

// PrintOutcome prints the counts found for the subject just processed
func (t *Tracker) PrintOutcome(following, followers string) {
	if IsQuietMode() {
		return
	}
	if following == "" {
		following = "-"
	}
	if followers == "" {
		followers = "-"
	}
	fmt.Printf("  %s following=%s followers=%s\n",
		Green("[FOUND]"), Yellow(following), Yellow(followers))
}

// PrintMiss prints a no-result line for the subject just processed
func (t *Tracker) PrintMiss() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("  %s\n", Dim("[NOT FOUND]"))
}

// PrintSummary prints totals for the finished pass
func (t *Tracker) PrintSummary() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\n%s processed=%d filled=%d empty=%d elapsed=%s rate=%.1f/min\n",
		Green("[PASS COMPLETE]"),
		t.Processed, t.Filled, t.Empty,
		t.Elapsed().Round(time.Second),
		t.Rate())
}
