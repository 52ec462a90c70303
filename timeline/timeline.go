// Package timeline holds the note events of one loaded track.
package timeline

import (
	"context"
	"io"
	"math"
)

const (
	LowestPitch     = 21
	HighestPitch    = 108
	MaxVelocity     = 127
	DefaultVelocity = 80
)

type NoteEvent struct {
	Pitch    int     `json:"pitch" yaml:"pitch"`
	Start    float64 `json:"start" yaml:"start"`
	End      float64 `json:"end" yaml:"end"`
	Velocity int     `json:"velocity" yaml:"velocity"`
}

// SoundingAt reports whether the note is held at time t. The end is exclusive.
func (n NoteEvent) SoundingAt(t float64) bool {
	return n.Start <= t && t < n.End
}

// Analyzer turns an input stream into note events. Implementations are the
// note extraction step; the order of the returned events is not significant.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader) ([]NoteEvent, error)
}

// Timeline is an immutable sequence of note events. The zero value and nil
// are both the empty timeline.
type Timeline struct {
	events   []NoteEvent
	duration float64
}

func New(events []NoteEvent) *Timeline {
	tl := &Timeline{events: make([]NoteEvent, len(events))}
	copy(tl.events, events)

	for _, n := range tl.events {
		if isFinite(n.End) && n.End > tl.duration {
			tl.duration = n.End
		}
	}

	return tl
}

func Empty() *Timeline {
	return &Timeline{}
}

// Events returns the notes in the order they were given. Callers must not
// modify the returned slice.
func (tl *Timeline) Events() []NoteEvent {
	if tl == nil {
		return nil
	}
	return tl.events
}

func (tl *Timeline) Len() int {
	if tl == nil {
		return 0
	}
	return len(tl.events)
}

// Duration is the latest finite note end, in seconds.
func (tl *Timeline) Duration() float64 {
	if tl == nil {
		return 0
	}
	return tl.duration
}

type IssueKind int

const (
	PitchOutOfRange IssueKind = iota
	InvalidTime
	EndBeforeStart
	VelocityOutOfRange
)

func (k IssueKind) String() string {
	switch k {
	case PitchOutOfRange:
		return "pitch out of range"
	case InvalidTime:
		return "invalid time"
	case EndBeforeStart:
		return "end before start"
	case VelocityOutOfRange:
		return "velocity out of range"
	}
	return "unknown"
}

type Issue struct {
	Index int
	Kind  IssueKind
}

// Issues lists data-quality problems. The offending notes stay in the
// timeline; rendering copes with them.
func (tl *Timeline) Issues() []Issue {
	var issues []Issue
	for i, n := range tl.Events() {
		if n.Pitch < LowestPitch || n.Pitch > HighestPitch {
			issues = append(issues, Issue{Index: i, Kind: PitchOutOfRange})
		}
		if !isFinite(n.Start) || !isFinite(n.End) || n.Start < 0 || n.End < 0 {
			issues = append(issues, Issue{Index: i, Kind: InvalidTime})
		} else if n.End < n.Start {
			issues = append(issues, Issue{Index: i, Kind: EndBeforeStart})
		}
		if n.Velocity < 0 || n.Velocity > MaxVelocity {
			issues = append(issues, Issue{Index: i, Kind: VelocityOutOfRange})
		}
	}
	return issues
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
