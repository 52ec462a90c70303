package midiparser

type ParsedMidi struct {
	Tracks []Track       `json:"tracks"`
	Tempos []TempoChange `json:"tempos"`
	Meta   HeaderMeta    `json:"meta"`
}

type Track struct {
	Events []Event `json:"events"`
	// Time is the absolute tick of the last event on the track.
	Time int `json:"time"`
}

type Event struct {
	Note     int   `json:"note"`
	OnTick   int   `json:"on_tick"`
	OffTick  int   `json:"off_tick"`
	Channel  uint8 `json:"channel"`
	Velocity uint8 `json:"velocity"`
}

type TempoChange struct {
	Tick int     `json:"tick"`
	Bpm  float64 `json:"bpm"`
}

type HeaderMeta struct {
	QuarterValue int `json:"quarterValue"`
	TracksNumber int `json:"tracksNumber"`
}
