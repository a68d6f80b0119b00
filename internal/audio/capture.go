// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     audio
// Description: Microphone capture using PortAudio
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

const (
	// DefaultSampleRate matches what the transcription backend expects
	DefaultSampleRate = 16000

	// DefaultFrameSize is the number of samples per capture frame
	DefaultFrameSize = 4096

	// DefaultChannels is mono audio
	DefaultChannels = 1
)

// Capture reads microphone input and delivers it frame by frame on a
// channel. Frames are dropped when the consumer falls behind so the
// capture loop never blocks on a slow reader.
type Capture struct {
	mu          sync.RWMutex
	stream      *portaudio.Stream
	sampleRate  float64
	frameSize   int
	channels    int
	deviceName  string
	running     bool
	frames      chan []float32
	loopDone    chan struct{}
	initialized bool
}

// CaptureConfig holds configuration for microphone capture
type CaptureConfig struct {
	SampleRate int
	FrameSize  int
	Channels   int
	DeviceName string // empty means the system default input
}

// DefaultCaptureConfig returns the default capture configuration
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate: DefaultSampleRate,
		FrameSize:  DefaultFrameSize,
		Channels:   DefaultChannels,
	}
}

// NewCapture initializes PortAudio and creates a capture instance
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Capture{
		sampleRate:  float64(cfg.SampleRate),
		frameSize:   cfg.FrameSize,
		channels:    cfg.Channels,
		deviceName:  cfg.DeviceName,
		frames:      make(chan []float32, 100),
		initialized: true,
	}, nil
}

// Start opens the input stream and begins delivering frames. The
// stream runs until Stop is called or ctx is canceled. The frames
// channel is closed by the capture loop when it exits, so a Capture
// serves exactly one recording session.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}
	if c.loopDone != nil {
		return fmt.Errorf("capture cannot be restarted")
	}

	buffer := make([]float32, c.frameSize)

	stream, err := c.openStream(buffer)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	c.stream = stream
	c.running = true
	c.loopDone = make(chan struct{})

	go c.captureLoop(ctx, buffer, c.loopDone)

	return nil
}

func (c *Capture) openStream(buffer []float32) (*portaudio.Stream, error) {
	if c.deviceName != "" && c.deviceName != "default" {
		device, err := findInputDevice(c.deviceName)
		if err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: c.channels,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      c.sampleRate,
				FramesPerBuffer: c.frameSize,
			}
			return portaudio.OpenStream(params, buffer)
		}
		// Fall through to the default device when the named one is gone.
	}

	return portaudio.OpenDefaultStream(c.channels, 0, c.sampleRate, c.frameSize, buffer)
}

func (c *Capture) captureLoop(ctx context.Context, buffer []float32, done chan struct{}) {
	// Closing frames from the producer side lets consumers drain with
	// a plain range and observe the end of the session.
	defer close(done)
	defer close(c.frames)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		running := c.running
		stream := c.stream
		c.mu.RUnlock()

		if !running || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			// Overflows happen under load; keep reading unless stopped.
			c.mu.RLock()
			stillRunning := c.running
			c.mu.RUnlock()
			if !stillRunning {
				return
			}
			continue
		}

		frame := make([]float32, len(buffer))
		copy(frame, buffer)

		select {
		case c.frames <- frame:
		default:
			// Consumer is behind, drop the frame.
		}
	}
}

// Stop stops the capture stream. Safe to call when not running.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if c.stream != nil {
		c.stream.Stop()
		if err := c.stream.Close(); err != nil {
			return fmt.Errorf("failed to close input stream: %w", err)
		}
		c.stream = nil
	}

	return nil
}

// Close stops capture, waits for the capture loop to exit, and
// releases PortAudio. Idempotent.
func (c *Capture) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}

	c.mu.Lock()
	done := c.loopDone
	c.mu.Unlock()

	if done != nil {
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		if err := portaudio.Terminate(); err != nil {
			return fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		c.initialized = false

		// The loop closes frames on exit; when Start was never
		// called nothing else will.
		if done == nil {
			close(c.frames)
		}
	}
	return nil
}

// Frames returns the channel delivering captured audio frames
func (c *Capture) Frames() <-chan []float32 {
	return c.frames
}

// IsRunning reports whether capture is active
func (c *Capture) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// SampleRate returns the configured sample rate
func (c *Capture) SampleRate() int {
	return int(c.sampleRate)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("input device not found: %s", name)
}

// DeviceInfo describes an audio device visible to PortAudio
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefaultInput    bool
	IsDefaultOutput   bool
}

// ListDevices returns all audio devices. It initializes and terminates
// PortAudio itself, so it must not be called while a stream is open.
func ListDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	var defaultIn, defaultOut string
	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil {
		defaultIn = dev.Name
	}
	if dev, err := portaudio.DefaultOutputDevice(); err == nil && dev != nil {
		defaultOut = dev.Name
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		infos = append(infos, DeviceInfo{
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefaultInput:    dev.Name == defaultIn,
			IsDefaultOutput:   dev.Name == defaultOut,
		})
	}
	return infos, nil
}
