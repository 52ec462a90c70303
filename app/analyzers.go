package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"pianorain/midiparser"
	"pianorain/midiprocessor2"
	"pianorain/timeline"
)

// Recordings of real audio would need pitch transcription.
var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true, ".flac": true, ".m4a": true, ".aac": true,
}

// AnalyzerFor picks the note extractor for a file name.
func AnalyzerFor(name string) (timeline.Analyzer, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".mid", ".midi":
		return midiparser.Parser{}, nil
	case ".json":
		return midiprocessor2.Parser{}, nil
	case ".yaml", ".yml":
		return timeline.YAMLAnalyzer{}, nil
	}
	if audioExtensions[ext] {
		return nil, fmt.Errorf("%w: audio transcription is not available for %s", ErrUnsupportedInput, ext)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, ext)
}

func isMidi(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mid", ".midi":
		return true
	}
	return false
}
