// Package midiparser reads Standard MIDI Files into note timelines.
package midiparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"pianorain/timeline"
)

const defaultBpm = 120

var (
	ErrNotMidi           = errors.New("not a standard midi file")
	ErrUnsupportedFormat = errors.New("unsupported midi time format")
)

type noteKey struct {
	channel uint8
	key     uint8
}

// ParseFile decodes an SMF stream. Only metric (PPQ) time formats are
// supported. Notes still sounding when their track ends are closed at the
// track's last tick.
func ParseFile(r io.Reader) (ParsedMidi, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return ParsedMidi{}, fmt.Errorf("%w: %v", ErrNotMidi, err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks.Resolution() == 0 {
		return ParsedMidi{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, s.TimeFormat)
	}

	parsed := ParsedMidi{
		Tracks: make([]Track, len(s.Tracks)),
		Meta: HeaderMeta{
			QuarterValue: int(ticks.Resolution()),
			TracksNumber: len(s.Tracks),
		},
	}

	for trackIndex, events := range s.Tracks {
		track := &parsed.Tracks[trackIndex]
		open := map[noteKey][]int{}

		for _, ev := range events {
			track.Time += int(ev.Delta)

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				parsed.Tempos = append(parsed.Tempos, TempoChange{Tick: track.Time, Bpm: bpm})
				continue
			}

			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				k := noteKey{ch, key}
				open[k] = append(open[k], len(track.Events))
				track.Events = append(track.Events, Event{
					Note:     int(key),
					OnTick:   track.Time,
					OffTick:  -1,
					Channel:  ch,
					Velocity: vel,
				})
			case msg.GetNoteEnd(&ch, &key):
				k := noteKey{ch, key}
				pending := open[k]
				if len(pending) == 0 {
					continue
				}
				track.Events[pending[0]].OffTick = track.Time
				open[k] = pending[1:]
			}
		}

		for i := range track.Events {
			if track.Events[i].OffTick < 0 {
				track.Events[i].OffTick = track.Time
			}
		}
	}

	sort.SliceStable(parsed.Tempos, func(i, j int) bool {
		return parsed.Tempos[i].Tick < parsed.Tempos[j].Tick
	})
	return parsed, nil
}

// tempoMap converts absolute ticks to seconds.
type tempoMap struct {
	quarterTicks float64
	changes      []TempoChange
	// offsets[i] is the time in seconds at changes[i].Tick.
	offsets []float64
}

func newTempoMap(quarterTicks int, changes []TempoChange) *tempoMap {
	m := &tempoMap{quarterTicks: float64(quarterTicks)}
	if len(changes) == 0 || changes[0].Tick > 0 {
		m.changes = append(m.changes, TempoChange{Tick: 0, Bpm: defaultBpm})
	}
	for _, c := range changes {
		if c.Bpm <= 0 {
			continue
		}
		// A later change at the same tick replaces the earlier one.
		if n := len(m.changes); n > 0 && m.changes[n-1].Tick == c.Tick {
			m.changes[n-1] = c
			continue
		}
		m.changes = append(m.changes, c)
	}

	m.offsets = make([]float64, len(m.changes))
	for i := 1; i < len(m.changes); i++ {
		prev := m.changes[i-1]
		m.offsets[i] = m.offsets[i-1] + m.span(prev.Tick, m.changes[i].Tick, prev.Bpm)
	}
	return m
}

func (m *tempoMap) span(from, to int, bpm float64) float64 {
	beatTime := 60 / bpm
	return float64(to-from) / m.quarterTicks * beatTime
}

func (m *tempoMap) seconds(tick int) float64 {
	i := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].Tick > tick }) - 1
	if i < 0 {
		i = 0
	}
	c := m.changes[i]
	return m.offsets[i] + m.span(c.Tick, tick, c.Bpm)
}

// Notes flattens every track into note events timed in seconds.
func (p ParsedMidi) Notes() []timeline.NoteEvent {
	tm := newTempoMap(p.Meta.QuarterValue, p.Tempos)

	var notes []timeline.NoteEvent
	for _, track := range p.Tracks {
		for _, ev := range track.Events {
			notes = append(notes, timeline.NoteEvent{
				Pitch:    ev.Note,
				Start:    tm.seconds(ev.OnTick),
				End:      tm.seconds(ev.OffTick),
				Velocity: int(ev.Velocity),
			})
		}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
	return notes
}

// Parser is a timeline.Analyzer for .mid files.
type Parser struct{}

func (Parser) Analyze(ctx context.Context, r io.Reader) ([]timeline.NoteEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := ParseFile(r)
	if err != nil {
		return nil, err
	}
	return parsed.Notes(), nil
}
