//go:build !sound

package audio

import "errors"

var ErrNoSound = errors.New("built without sound support (use -tags sound)")

type Player struct {
	*Synth
}

func NewPlayer(cylinders int) *Player {
	return &Player{Synth: NewSynth(cylinders)}
}

func (p *Player) Available() bool { return false }
func (p *Player) Start() error    { return ErrNoSound }
func (p *Player) Stop()           {}
