// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     audio
// Description: Audio playback using PortAudio
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Player plays decoded PCM audio. The playback queue depends on this
// interface so tests can substitute a fake.
type Player interface {
	PlayPCM16(ctx context.Context, data []byte, sampleRate, channels int) error
	Close() error
}

// Playback plays PCM16 audio on the default output device
type Playback struct {
	mu          sync.Mutex
	frameSize   int
	initialized bool
}

// NewPlayback initializes PortAudio for output
func NewPlayback() (*Playback, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Playback{
		frameSize:   1024,
		initialized: true,
	}, nil
}

// PlayPCM16 plays little-endian 16-bit PCM and blocks until playback
// finishes or ctx is canceled.
func (p *Playback) PlayPCM16(ctx context.Context, data []byte, sampleRate, channels int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return fmt.Errorf("playback is closed")
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels < 1 || channels > 2 {
		return fmt.Errorf("invalid channel count %d", channels)
	}

	samples := DecodePCM16(data)
	if len(samples) == 0 {
		return nil
	}

	out := make([]float32, p.frameSize*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), p.frameSize, out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for pos := 0; pos < len(samples); pos += len(out) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := copy(out, samples[pos:])
		// Pad the final buffer with silence.
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		if err := stream.Write(); err != nil {
			// Underflows are recoverable, keep writing.
			continue
		}
	}

	return nil
}

// Close releases PortAudio
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	p.initialized = false

	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}
