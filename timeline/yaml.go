package timeline

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type document struct {
	Notes []yamlNote `yaml:"notes"`
}

type yamlNote struct {
	Pitch    *int     `yaml:"pitch"`
	Start    *float64 `yaml:"start"`
	End      *float64 `yaml:"end"`
	Velocity *int     `yaml:"velocity"`
}

// YAMLAnalyzer reads a note list written as YAML (or JSON):
//
//	notes:
//	  - {pitch: 60, start: 0, end: 1, velocity: 100}
//
// Missing fields default to zero, velocity to DefaultVelocity.
type YAMLAnalyzer struct{}

func (YAMLAnalyzer) Analyze(ctx context.Context, r io.Reader) ([]NoteEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read note list: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	notes := make([]NoteEvent, 0, len(doc.Notes))
	for _, n := range doc.Notes {
		ev := NoteEvent{Velocity: DefaultVelocity}
		if n.Pitch != nil {
			ev.Pitch = *n.Pitch
		}
		if n.Start != nil {
			ev.Start = *n.Start
		}
		if n.End != nil {
			ev.End = *n.End
		}
		if n.Velocity != nil {
			ev.Velocity = *n.Velocity
		}
		notes = append(notes, ev)
	}

	return notes, nil
}

// Encode writes events in the format YAMLAnalyzer reads.
func Encode(w io.Writer, events []NoteEvent) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Notes []NoteEvent `yaml:"notes"`
	}{events}); err != nil {
		return err
	}
	return enc.Close()
}
