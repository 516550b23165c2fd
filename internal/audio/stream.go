//go:build sound

package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Player streams a Synth to the default output device.
type Player struct {
	*Synth
	stream *portaudio.Stream
}

func NewPlayer(cylinders int) *Player {
	return &Player{Synth: NewSynth(cylinders)}
}

func (p *Player) Available() bool { return true }

func (p *Player) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.Fill)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start output stream: %w", err)
	}
	p.stream = stream
	return nil
}

func (p *Player) Stop() {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
		portaudio.Terminate()
	}
}
