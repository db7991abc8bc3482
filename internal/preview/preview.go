// Package preview is a placeholder frame scheduler. It advances a
// playhead over the timeline at the configured frame rate without
// decoding or compositing anything; real preview rendering lives with
// the UI collaborator.
package preview

import (
	"sync"
	"time"
)

// Player schedules playhead advancement over a fixed duration.
type Player struct {
	mu        sync.Mutex
	frameRate float64
	duration  float64
	current   float64
	playing   bool
	stop      chan struct{}
}

// NewPlayer creates a stopped player
func NewPlayer(frameRate float64) *Player {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Player{frameRate: frameRate}
}

// SetDuration updates the playable range, clamping the playhead
func (p *Player) SetDuration(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = seconds
	if p.current > seconds {
		p.current = seconds
	}
}

// Play starts advancing the playhead until paused or the end is reached
func (p *Player) Play() {
	p.mu.Lock()
	if p.playing || p.duration <= 0 {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.stop = make(chan struct{})
	stop := p.stop
	p.mu.Unlock()

	interval := time.Duration(float64(time.Second) / p.frameRate)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.mu.Lock()
				p.current += 1 / p.frameRate
				if p.current >= p.duration {
					p.current = p.duration
					p.playing = false
					p.mu.Unlock()
					return
				}
				p.mu.Unlock()
			}
		}
	}()
}

// Pause halts playback, keeping the playhead position
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		close(p.stop)
		p.playing = false
	}
}

// Stop halts playback and rewinds to zero
func (p *Player) Stop() {
	p.Pause()
	p.mu.Lock()
	p.current = 0
	p.mu.Unlock()
}

// SeekTo moves the playhead, clamped to the playable range
func (p *Player) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if seconds > p.duration {
		seconds = p.duration
	}
	p.current = seconds
}

// CurrentTime returns the playhead position in seconds
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Playing reports whether the player is advancing
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
