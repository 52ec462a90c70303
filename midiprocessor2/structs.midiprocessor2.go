package midiprocessor2

// ParsedMidi is the JSON document produced by @tonejs/midi.
type ParsedMidi struct {
	Header struct {
		Name   string `json:"name"`
		Ppq    int    `json:"ppq"`
		Tempos []struct {
			Bpm   float64 `json:"bpm"`
			Ticks int     `json:"ticks"`
		} `json:"tempos"`
		TimeSignatures []struct {
			Ticks         int     `json:"ticks"`
			TimeSignature []int   `json:"timeSignature"`
			Measures      float64 `json:"measures"`
		} `json:"timeSignatures"`
	} `json:"header"`
	Tracks []struct {
		Channel    int `json:"channel"`
		Instrument struct {
			Family string `json:"family"`
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"instrument"`
		Name            string `json:"name"`
		Notes           []Note `json:"notes"`
		EndOfTrackTicks int    `json:"endOfTrackTicks"`
	} `json:"tracks"`
}

type Note struct {
	Duration      float64 `json:"duration"`
	DurationTicks int     `json:"durationTicks"`
	Midi          int     `json:"midi"`
	Name          string  `json:"name"`
	Ticks         int     `json:"ticks"`
	Time          float64 `json:"time"`
	// Velocity is normalized to 0..1. Nil means the field was absent.
	Velocity *float64 `json:"velocity"`
}
