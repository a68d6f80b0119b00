// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     audio
// Description: FIFO playback queue for assistant speech
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"voicedesk/pkg/logging"
)

// Queue plays base64-encoded WAV clips strictly in arrival order.
// A single consumer goroutine decodes and plays one clip at a time.
// When auto-play is disabled the consumer pauses after the current
// clip and resumes as soon as auto-play is enabled again. Clips that
// fail to decode are dropped and playback continues with the next one.
type Queue struct {
	player Player
	log    *logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	items   [][]byte
	enabled bool
	closed  bool
	playing bool
	cancel  context.CancelFunc

	notify func(playing bool)
	done   chan struct{}
}

// NewQueue creates a playback queue on top of the given player.
// autoPlay sets the initial consumption state.
func NewQueue(player Player, autoPlay bool, log *logging.Logger) *Queue {
	q := &Queue{
		player:  player,
		log:     log,
		enabled: autoPlay,
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.consume()
	return q
}

// SetNotify registers a callback invoked when playback starts or
// stops. The callback runs on the consumer goroutine.
func (q *Queue) SetNotify(fn func(playing bool)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notify = fn
}

// Enqueue adds a base64-encoded clip. Invalid base64 is rejected here
// so a broken clip never occupies the queue.
func (q *Queue) Enqueue(b64 string) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		q.log.Warn("dropping clip with invalid base64", "error", err)
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, data)
	q.cond.Signal()
}

// SetAutoPlay enables or disables consumption. Enabling wakes the
// consumer immediately so clips queued while paused start playing.
// Disabling does not interrupt the clip already playing.
func (q *Queue) SetAutoPlay(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enabled = enabled
	if enabled {
		q.cond.Signal()
	}
}

// Clear drops all pending clips and interrupts the one playing
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Pending returns the number of clips waiting to play
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsPlaying reports whether a clip is currently playing
func (q *Queue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Close stops the consumer and interrupts playback. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	cancel := q.cancel
	q.cond.Signal()
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-q.done
}

func (q *Queue) consume() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for !q.closed && (len(q.items) == 0 || !q.enabled) {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}

		data := q.items[0]
		q.items = q.items[1:]

		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.playing = true
		notify := q.notify
		q.mu.Unlock()

		if notify != nil {
			notify(true)
		}

		q.play(ctx, data)
		cancel()

		q.mu.Lock()
		q.playing = false
		q.cancel = nil
		notify = q.notify
		q.mu.Unlock()

		if notify != nil {
			notify(false)
		}
	}
}

func (q *Queue) play(ctx context.Context, data []byte) {
	wav, err := DecodeWAV(data)
	if err != nil {
		q.log.Warn("dropping undecodable clip", "error", err)
		return
	}

	if err := q.player.PlayPCM16(ctx, wav.Data, wav.SampleRate, wav.Channels); err != nil {
		if !errors.Is(err, context.Canceled) {
			q.log.Warn("playback failed", "error", err)
		}
	}
}
