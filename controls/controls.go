// Package controls maps the player state to what the three control buttons
// show. It holds no state of its own.
package controls

import "pianorain/visualizer"

type Icon string

const (
	IconPlay    Icon = "play"
	IconPause   Icon = "pause"
	IconRecord  Icon = "record"
	IconStop    Icon = "stop"
	IconMobile  Icon = "mobile"
	IconDesktop Icon = "desktop"
)

// Glyph is a terminal friendly rendering of the icon.
func (i Icon) Glyph() string {
	switch i {
	case IconPlay:
		return "▶"
	case IconPause:
		return "⏸"
	case IconRecord:
		return "●"
	case IconStop:
		return "■"
	case IconMobile:
		return "▯"
	case IconDesktop:
		return "▭"
	}
	return "?"
}

type State struct {
	Playing     bool                   `json:"playing"`
	Recording   bool                   `json:"recording"`
	Orientation visualizer.Orientation `json:"-"`
	// Disabled is set while a track is being analyzed.
	Disabled bool `json:"disabled"`
}

type Button struct {
	Icon     Icon   `json:"icon"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

type Visual struct {
	Orientation Button `json:"orientation"`
	PlayPause   Button `json:"playPause"`
	Record      Button `json:"record"`
}

func Lookup(s State) Visual {
	v := Visual{
		Orientation: Button{Icon: IconDesktop, Title: "Toggle Orientation"},
		PlayPause:   Button{Icon: IconPlay, Title: "Play"},
		Record:      Button{Icon: IconRecord, Title: "Start Recording"},
	}
	if s.Orientation == visualizer.Vertical {
		v.Orientation.Icon = IconMobile
	}
	if s.Playing {
		v.PlayPause = Button{Icon: IconPause, Title: "Pause"}
	}
	if s.Recording {
		v.Record = Button{Icon: IconStop, Title: "Stop Recording", Active: true}
	}
	v.Orientation.Disabled = s.Disabled
	v.PlayPause.Disabled = s.Disabled
	v.Record.Disabled = s.Disabled
	return v
}
