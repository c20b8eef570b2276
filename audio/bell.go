// Package audio provides the optional audible bell rung on edits that change nothing.
package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	bellFreq     = 880
	bellDuration = 50 * time.Millisecond
)

// Bell plays a short sine tone through the system speaker
// Until Init succeeds Ring is silent, so a missing audio device never blocks editing
type Bell struct {
	mu          sync.Mutex
	initialized bool
}

// NewBell creates an uninitialized bell
func NewBell() *Bell {
	return &Bell{}
}

// Init opens the speaker
func (b *Bell) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

// Ring plays the tone without waiting for it to finish
func (b *Bell) Ring() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	tone, err := bellTone()
	if err != nil {
		log.Printf("audio: bell tone: %v", err)
		return
	}
	speaker.Play(tone)
}

// Close releases the speaker
func (b *Bell) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	speaker.Close()
	b.initialized = false
}

// bellTone returns a finite streamer of bellDuration samples
func bellTone() (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, bellFreq)
	if err != nil {
		return nil, err
	}
	return beep.Take(sampleRate.N(bellDuration), sine), nil
}
