// Package midiprocessor2 reads MIDI that was already converted to JSON by
// @tonejs/midi. Note times there are in seconds, so no tempo map is needed.
package midiprocessor2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"pianorain/timeline"
)

func ParseJSON(r io.Reader) (ParsedMidi, error) {
	var midiData ParsedMidi
	byteValue, err := io.ReadAll(r)
	if err != nil {
		return midiData, fmt.Errorf("read midi json: %w", err)
	}
	if err := json.Unmarshal(byteValue, &midiData); err != nil {
		return midiData, fmt.Errorf("%w: %v", timeline.ErrMalformed, err)
	}
	return midiData, nil
}

func velocity(v *float64) int {
	if v == nil {
		return timeline.DefaultVelocity
	}
	return int(math.Round(*v * timeline.MaxVelocity))
}

func (p ParsedMidi) Notes() []timeline.NoteEvent {
	var notes []timeline.NoteEvent
	for _, track := range p.Tracks {
		for _, n := range track.Notes {
			notes = append(notes, timeline.NoteEvent{
				Pitch:    n.Midi,
				Start:    n.Time,
				End:      n.Time + n.Duration,
				Velocity: velocity(n.Velocity),
			})
		}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
	return notes
}

// Parser is a timeline.Analyzer for Tone.js JSON files.
type Parser struct{}

func (Parser) Analyze(ctx context.Context, r io.Reader) ([]timeline.NoteEvent, error) {
	midiData, err := ParseJSON(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return midiData.Notes(), nil
}
