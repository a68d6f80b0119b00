// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     vad
// Description: WebRTC VAD backed detector
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// WebRTCVAD wraps the WebRTC voice activity detector
type WebRTCVAD struct {
	vad        *webrtcvad.VAD
	sampleRate int
	mode       int
}

// NewWebRTCVAD creates a detector for the given configuration. The
// mode is clamped to the valid 0 to 3 range.
func NewWebRTCVAD(cfg Config) (*WebRTCVAD, error) {
	switch cfg.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("unsupported sample rate %d for VAD", cfg.SampleRate)
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}

	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	return &WebRTCVAD{
		vad:        v,
		sampleRate: cfg.SampleRate,
		mode:       mode,
	}, nil
}

// Process classifies float32 samples after conversion to int16
func (w *WebRTCVAD) Process(samples []float32) (bool, error) {
	int16Samples := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		int16Samples[i] = int16(s * 32767)
	}
	return w.ProcessInt16(int16Samples)
}

// ProcessInt16 splits the samples into 10ms frames and reports true
// if any frame contains speech. Short input is zero padded to one
// frame.
func (w *WebRTCVAD) ProcessInt16(samples []int16) (bool, error) {
	frameSize := w.sampleRate / 100

	if len(samples) < frameSize {
		padded := make([]int16, frameSize)
		copy(padded, samples)
		samples = padded
	}

	for i := 0; i+frameSize <= len(samples); i += frameSize {
		frame := int16ToBytes(samples[i : i+frameSize])

		active, err := w.vad.Process(w.sampleRate, frame)
		if err != nil {
			return false, fmt.Errorf("VAD processing failed: %w", err)
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

// Mode returns the configured aggressiveness
func (w *WebRTCVAD) Mode() int {
	return w.mode
}

// SampleRate returns the configured sample rate
func (w *WebRTCVAD) SampleRate() int {
	return w.sampleRate
}

// Close releases resources. The WebRTC VAD needs no explicit cleanup.
func (w *WebRTCVAD) Close() error {
	return nil
}

func int16ToBytes(samples []int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}
