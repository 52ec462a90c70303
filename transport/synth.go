package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	SampleRate = 44100
	// 16-bit stereo
	bytesPerFrame = 4
	renderBlock   = 4096
	// Release tails keep sounding after the last note off.
	tailSeconds = 1
)

var (
	audioContext     *audio.Context
	audioContextOnce sync.Once
)

// AudioContext returns the process-wide ebiten audio context. Ebiten allows
// only one.
func AudioContext() *audio.Context {
	audioContextOnce.Do(func() {
		audioContext = audio.NewContext(SampleRate)
	})
	return audioContext
}

func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	if path == "" {
		return nil, ErrNoSoundFont
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read soundfont %s: %w", path, err)
	}
	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse soundfont %s: %w", path, err)
	}
	return sf, nil
}

// RenderPCM synthesizes a whole MIDI file into 16-bit little endian stereo
// PCM at SampleRate.
func RenderPCM(sf *meltysynth.SoundFont, midiData io.Reader) ([]byte, error) {
	if sf == nil {
		return nil, ErrNoSoundFont
	}
	midiFile, err := meltysynth.NewMidiFile(midiData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synthesizer, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	sequencer := meltysynth.NewMidiFileSequencer(synthesizer)
	sequencer.Play(midiFile, false)

	total := int((midiFile.GetLength().Seconds() + tailSeconds) * SampleRate)
	pcm := make([]byte, 0, total*bytesPerFrame)
	left := make([]float32, renderBlock)
	right := make([]float32, renderBlock)

	for rendered := 0; rendered < total; rendered += renderBlock {
		n := min(renderBlock, total-rendered)
		sequencer.Render(left[:n], right[:n])
		pcm = appendSamples(pcm, left[:n], right[:n])
	}
	return pcm, nil
}

func appendSamples(pcm []byte, left, right []float32) []byte {
	var frame [bytesPerFrame]byte
	for i := range left {
		binary.LittleEndian.PutUint16(frame[0:], uint16(toInt16(left[i])))
		binary.LittleEndian.PutUint16(frame[2:], uint16(toInt16(right[i])))
		pcm = append(pcm, frame[:]...)
	}
	return pcm
}

func toInt16(v float32) int16 {
	v = max(-1, min(1, v))
	return int16(v * 32767)
}

// NewMidiPlayer synthesizes midiData and wraps the PCM in a player on the
// shared audio context.
func NewMidiPlayer(sf *meltysynth.SoundFont, midiData io.Reader) (*audio.Player, error) {
	pcm, err := RenderPCM(sf, midiData)
	if err != nil {
		return nil, err
	}
	return AudioContext().NewPlayerFromBytes(pcm), nil
}
