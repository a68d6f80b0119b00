// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     app
// Description: Controller owning all client state
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voicedesk/internal/api"
	"voicedesk/internal/audio"
	"voicedesk/internal/config"
	"voicedesk/internal/persona"
	"voicedesk/internal/session"
	"voicedesk/internal/transport"
	"voicedesk/internal/vad"
	"voicedesk/pkg/logging"
)

// User-facing fallback messages for failed requests
const (
	msgAPIKeyProblem = "There seems to be a problem with the configured API keys. Please check them in settings (ctrl+s)."
	msgChatFailed    = "Sorry, I ran into a problem answering that. Please try again."
)

// EventKind discriminates controller events
type EventKind int

const (
	// EventState reports a recording state change
	EventState EventKind = iota

	// EventTranscript reports that the active transcript changed
	EventTranscript

	// EventPartial carries an interim transcript of live speech
	EventPartial

	// EventSessions reports that the session list changed
	EventSessions

	// EventPlayback reports playback starting or stopping
	EventPlayback

	// EventNotify carries a transient user-facing notice
	EventNotify

	// EventTheme reports a dark mode toggle
	EventTheme

	// EventBusy reports a request starting or finishing
	EventBusy
)

// Event is a state change the view should render
type Event struct {
	Kind    EventKind
	State   State
	Text    string
	IsError bool
	On      bool
}

// captureSource abstracts the microphone for tests. Stop ends the
// session and the producer closes Frames on the way out; Close then
// releases the audio backend.
type captureSource interface {
	Start(ctx context.Context) error
	Stop() error
	Close() error
	Frames() <-chan []float32
}

// streamConn abstracts the websocket session for tests
type streamConn interface {
	Connect(ctx context.Context) error
	SendPCM(data []byte) error
	Close() error
}

// App owns every piece of mutable client state: the recording state
// machine, the active transcript, the playback queue, settings and the
// session store. The view only renders what App emits.
type App struct {
	cfg      *config.Config
	log      *logging.Logger
	client   *api.Client
	store    *session.Store
	settings *config.Settings
	setStore *config.SettingsStore
	queue    *audio.Queue
	personas *persona.Registry
	machine  *StateMachine

	mu         sync.Mutex
	transcript *session.Transcript
	recording  *recordingSession

	events chan Event

	// Factories, replaceable in tests.
	newCapture  func() (captureSource, error)
	newStream   func(handlers transport.Handlers) (streamConn, error)
	newDetector func() (vad.Detector, error)
}

// recordingSession bundles everything owned by one recording
type recordingSession struct {
	cancel  context.CancelFunc
	capture captureSource
	stream  streamConn
	tracker *vad.Tracker
	done    chan struct{}
}

// Options carries the dependencies App does not build itself
type Options struct {
	Config        *config.Config
	Settings      *config.Settings
	SettingsStore *config.SettingsStore
	Store         *session.Store
	Client        *api.Client
	Player        audio.Player
	Personas      *persona.Registry
	Log           *logging.Logger
}

// New creates the controller and activates the most recent session,
// creating one when the store is empty.
func New(opts Options) (*App, error) {
	a := &App{
		cfg:      opts.Config,
		log:      opts.Log,
		client:   opts.Client,
		store:    opts.Store,
		settings: opts.Settings,
		setStore: opts.SettingsStore,
		personas: opts.Personas,
		machine:  NewStateMachine(),
		events:   make(chan Event, 64),
	}

	a.queue = audio.NewQueue(opts.Player, opts.Settings.AutoPlay, opts.Log.WithName("queue"))
	a.queue.SetNotify(func(playing bool) {
		a.emit(Event{Kind: EventPlayback, On: playing})
	})

	a.machine.OnTransition(func(from, to State) {
		a.emit(Event{Kind: EventState, State: to})
	})

	a.newCapture = func() (captureSource, error) {
		return audio.NewCapture(audio.CaptureConfig{
			SampleRate: opts.Config.Audio.SampleRate,
			FrameSize:  opts.Config.Audio.FrameSize,
			Channels:   opts.Config.Audio.Channels,
			DeviceName: opts.Config.Audio.InputDevice,
		})
	}
	a.newStream = func(handlers transport.Handlers) (streamConn, error) {
		wsURL, err := transport.StreamURL(opts.Config.Server.BaseURL, opts.Config.Server.StreamPath)
		if err != nil {
			return nil, err
		}
		return transport.NewStreamClient(wsURL, handlers, opts.Log.WithName("stream")), nil
	}
	a.newDetector = func() (vad.Detector, error) {
		return vad.NewWebRTCVAD(vad.Config{
			SampleRate: opts.Config.Audio.SampleRate,
			Mode:       opts.Config.VAD.Mode,
		})
	}

	active := opts.Store.MostRecent()
	if active == nil {
		sess, err := opts.Store.CreateNew()
		if err != nil {
			return nil, fmt.Errorf("failed to create first session: %w", err)
		}
		active = sess
	}
	a.transcript = session.NewTranscript(active)

	return a, nil
}

// Events returns the channel the view consumes
func (a *App) Events() <-chan Event {
	return a.events
}

// State returns the current recording state
func (a *App) State() State {
	return a.machine.Current()
}

// Settings returns the current settings snapshot
func (a *App) Settings() config.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.settings
}

// Personas returns the persona registry
func (a *App) Personas() *persona.Registry {
	return a.personas
}

// emit delivers an event without ever blocking the caller
func (a *App) emit(ev Event) {
	select {
	case a.events <- ev:
	default:
		a.log.Warn("event dropped, view not draining", "kind", ev.Kind)
	}
}

func (a *App) notify(text string, isErr bool) {
	a.emit(Event{Kind: EventNotify, Text: text, IsError: isErr})
}

// ----------------------------------------------------------------------------
// Recording
// ----------------------------------------------------------------------------

// ToggleRecording starts a session when idle, stops the running one,
// and clears an error state back to idle.
func (a *App) ToggleRecording() {
	switch a.machine.Current() {
	case StateListening:
		a.StopRecording()
	case StateError:
		a.machine.TransitionTo(StateIdle)
	default:
		if err := a.startRecording(); err != nil {
			a.log.Error("recording failed to start", "error", err)
			a.machine.TransitionTo(StateError)
			a.notify(fmt.Sprintf("Could not start recording: %v", err), true)
		}
	}
}

func (a *App) startRecording() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recording != nil {
		return fmt.Errorf("recording already in progress")
	}

	capture, err := a.newCapture()
	if err != nil {
		return fmt.Errorf("microphone unavailable: %w", err)
	}

	stream, err := a.newStream(transport.Handlers{
		OnPartial: func(text string) {
			a.emit(Event{Kind: EventPartial, Text: text})
		},
		OnFinal: func(text string) {
			a.appendAndSave(session.RoleUser, text)
		},
		OnAssistant: func(text string) {
			a.appendAndSave(session.RoleAssistant, text)
		},
		OnAudio: func(b64 string) {
			a.queue.Enqueue(b64)
		},
		OnClosed: func(err error) {
			if err != nil {
				a.log.Error("stream closed", "error", err)
				if a.machine.Current() == StateListening {
					a.machine.TransitionTo(StateError)
					a.notify("Connection to the assistant was lost.", true)
				}
			}
		},
	})
	if err != nil {
		capture.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := stream.Connect(ctx); err != nil {
		cancel()
		capture.Close()
		return fmt.Errorf("could not reach the assistant: %w", err)
	}

	if err := capture.Start(ctx); err != nil {
		cancel()
		stream.Close()
		capture.Close()
		return fmt.Errorf("microphone unavailable: %w", err)
	}

	rec := &recordingSession{
		cancel:  cancel,
		capture: capture,
		stream:  stream,
		done:    make(chan struct{}),
	}

	// VAD only runs when the setting is on; without it the session
	// ends when the user toggles again.
	var detector vad.Detector
	if a.settings.VoiceActivityDetection {
		detector, err = a.newDetector()
		if err != nil {
			a.log.Warn("VAD unavailable, continuing without it", "error", err)
		} else {
			rec.tracker = vad.NewTracker(vad.Config{
				SampleRate:        a.cfg.Audio.SampleRate,
				Mode:              a.cfg.VAD.Mode,
				SilenceDuration:   time.Duration(a.cfg.VAD.SilenceDuration * float64(time.Second)),
				MinSpeechDuration: time.Duration(a.cfg.VAD.MinSpeechDuration * float64(time.Second)),
			})
		}
	}

	a.recording = rec
	go a.pumpAudio(rec, detector)

	if err := a.machine.TransitionTo(StateListening); err != nil {
		// Error state blocks new recordings until acknowledged.
		a.teardownLocked(rec)
		return err
	}
	return nil
}

// pumpAudio moves microphone frames to the server until the session
// ends, running VAD on the way through when armed.
func (a *App) pumpAudio(rec *recordingSession, detector vad.Detector) {
	defer close(rec.done)
	if detector != nil {
		defer detector.Close()
	}

	for frame := range rec.capture.Frames() {
		if detector != nil && rec.tracker != nil {
			if isSpeech, err := detector.Process(frame); err == nil {
				rec.tracker.Update(isSpeech)
				if rec.tracker.ShouldEndRecording() {
					a.log.Debug("end of speech detected")
					go a.StopRecording()
					return
				}
			}
		}

		if err := rec.stream.SendPCM(audio.EncodePCM16(frame)); err != nil {
			a.log.Warn("failed to send audio frame", "error", err)
			return
		}
	}
}

// StopRecording ends the active recording session. Replies still in
// flight on the socket or over HTTP are not canceled and will land in
// the transcript.
func (a *App) StopRecording() {
	a.mu.Lock()
	rec := a.recording
	if rec == nil {
		a.mu.Unlock()
		return
	}
	a.teardownLocked(rec)
	a.mu.Unlock()

	if a.machine.Current() == StateListening {
		a.machine.TransitionTo(StateIdle)
	}
}

func (a *App) teardownLocked(rec *recordingSession) {
	rec.capture.Stop()
	rec.stream.Close()
	rec.cancel()
	a.recording = nil

	// The pump drains the frames channel until the capture loop closes
	// it; only then is it safe to release the audio backend.
	go func() {
		<-rec.done
		if err := rec.capture.Close(); err != nil {
			a.log.Warn("failed to release audio capture", "error", err)
		}
	}()
}

// ----------------------------------------------------------------------------
// Transcript and sessions
// ----------------------------------------------------------------------------

func (a *App) appendAndSave(role, text string) {
	if text == "" {
		return
	}

	a.mu.Lock()
	a.transcript.Append(role, text)
	sess := a.transcript.Session()
	a.mu.Unlock()

	if err := a.store.Save(sess); err != nil {
		a.log.Error("failed to save session", "error", err, "session", sess.ID)
	}
	a.emit(Event{Kind: EventTranscript})
	a.emit(Event{Kind: EventSessions})
}

// Messages returns a copy of the active transcript
func (a *App) Messages() []session.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]session.Message(nil), a.transcript.Messages()...)
}

// ActiveSession returns the id and title of the active session
func (a *App) ActiveSession() (id, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sess := a.transcript.Session()
	return sess.ID, sess.Title
}

// Sessions returns all sessions, newest first
func (a *App) Sessions() []*session.Session {
	return a.store.List()
}

// NewSession creates and activates a fresh session
func (a *App) NewSession() error {
	sess, err := a.store.CreateNew()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.transcript = session.NewTranscript(sess)
	a.mu.Unlock()

	a.emit(Event{Kind: EventTranscript})
	a.emit(Event{Kind: EventSessions})
	return nil
}

// SwitchSession activates a stored session
func (a *App) SwitchSession(id string) error {
	sess, err := a.store.Load(id)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.transcript = session.NewTranscript(sess)
	a.mu.Unlock()

	a.emit(Event{Kind: EventTranscript})
	return nil
}

// DeleteSession removes a session. Deleting the active one activates
// a fresh replacement so there is always an active session.
func (a *App) DeleteSession(id string) error {
	a.mu.Lock()
	activeID := a.transcript.Session().ID
	a.mu.Unlock()

	if err := a.store.Delete(id); err != nil {
		return err
	}

	if id == activeID {
		if err := a.NewSession(); err != nil {
			return err
		}
	}
	a.emit(Event{Kind: EventSessions})
	return nil
}

// ----------------------------------------------------------------------------
// Request flows
// ----------------------------------------------------------------------------

// SendText sends a typed message to the assistant. The user message
// appends immediately; the reply lands asynchronously.
func (a *App) SendText(text string) {
	if text == "" {
		return
	}

	a.appendAndSave(session.RoleUser, text)

	a.mu.Lock()
	chatID := a.transcript.Session().ID
	a.mu.Unlock()

	a.emit(Event{Kind: EventBusy, On: true})
	go func() {
		defer a.emit(Event{Kind: EventBusy, On: false})

		resp, err := a.client.Chat(context.Background(), text, chatID)
		if err != nil {
			a.log.Error("chat request failed", "error", err)
			if api.IsAPIKeyError(err) {
				a.appendAndSave(session.RoleAssistant, msgAPIKeyProblem)
			} else {
				a.appendAndSave(session.RoleAssistant, msgChatFailed)
			}
			return
		}

		a.appendAndSave(session.RoleAssistant, resp.Response)
		if resp.Audio != "" {
			a.queue.Enqueue(resp.Audio)
		}
	}()
}

// UploadFile validates and uploads a file for analysis. Validation
// errors return immediately without touching the network.
func (a *App) UploadFile(path string) error {
	if err := api.ValidateUploadPath(path); err != nil {
		return err
	}

	a.appendAndSave(session.RoleUser, fmt.Sprintf("Uploaded file: %s", path))

	a.emit(Event{Kind: EventBusy, On: true})
	go func() {
		defer a.emit(Event{Kind: EventBusy, On: false})

		resp, err := a.client.Upload(context.Background(), path)
		if err != nil {
			a.log.Error("upload failed", "error", err, "path", path)
			if api.IsAPIKeyError(err) {
				a.notify(msgAPIKeyProblem, true)
			} else {
				a.notify(fmt.Sprintf("Upload failed: %v", err), true)
			}
			return
		}

		a.appendAndSave(session.RoleAssistant, resp.AIInsights)
		a.notify(fmt.Sprintf("Analyzed %s (%s)", resp.Filename, resp.FileType), false)
	}()
	return nil
}

// Translate sends text through the multilingual voice flow
func (a *App) Translate(text, language, personaKey string) {
	if text == "" {
		return
	}
	if !a.personas.IsSupported(language) {
		a.notify(fmt.Sprintf("Language %q is not supported.", language), true)
		return
	}

	a.emit(Event{Kind: EventBusy, On: true})
	go func() {
		defer a.emit(Event{Kind: EventBusy, On: false})

		resp, err := a.client.MultilingualVoice(context.Background(), text, language, personaKey)
		if err != nil {
			a.log.Error("translation failed", "error", err)
			if api.IsAPIKeyError(err) {
				a.notify(msgAPIKeyProblem, true)
			} else {
				a.notify(fmt.Sprintf("Translation failed: %v", err), true)
			}
			return
		}

		a.appendAndSave(session.RoleUser, fmt.Sprintf("Translate to %s: %s", language, resp.OriginalText))
		a.appendAndSave(session.RoleAssistant, resp.TranslatedText)
		if resp.Audio != "" {
			a.queue.Enqueue(resp.Audio)
		}
	}()
}

// ----------------------------------------------------------------------------
// Settings
// ----------------------------------------------------------------------------

// SetAutoPlay toggles reply playback. Enabling wakes the queue so
// clips collected while paused start playing.
func (a *App) SetAutoPlay(enabled bool) {
	a.mu.Lock()
	a.settings.AutoPlay = enabled
	a.mu.Unlock()

	a.queue.SetAutoPlay(enabled)
	a.saveSettings()
}

// SetVoiceActivityDetection toggles automatic end-of-speech stop for
// future recordings; the running session keeps its arming.
func (a *App) SetVoiceActivityDetection(enabled bool) {
	a.mu.Lock()
	a.settings.VoiceActivityDetection = enabled
	a.mu.Unlock()

	a.saveSettings()
}

// SetDarkMode toggles the color theme
func (a *App) SetDarkMode(enabled bool) {
	a.mu.Lock()
	a.settings.DarkMode = enabled
	a.mu.Unlock()

	a.saveSettings()
	a.emit(Event{Kind: EventTheme, On: enabled})
}

func (a *App) saveSettings() {
	a.mu.Lock()
	snapshot := *a.settings
	a.mu.Unlock()

	if err := a.setStore.Save(&snapshot); err != nil {
		a.log.Error("failed to save settings", "error", err)
	}
}

// KeyStatus fetches the server-side API key state
func (a *App) KeyStatus(ctx context.Context) (map[string]api.KeyState, error) {
	return a.client.KeyStatus(ctx)
}

// SaveAPIKeys submits new key values to the server. The local mirror
// copies only the submitted non-empty keys, and only after the server
// confirms, so a rejected save leaves the mirror untouched.
func (a *App) SaveAPIKeys(ctx context.Context, keys map[string]string) error {
	if err := a.client.UpdateKeys(ctx, keys); err != nil {
		return err
	}

	a.mu.Lock()
	for name, value := range keys {
		if value != "" {
			a.settings.APIKeys[name] = value
		}
	}
	a.mu.Unlock()

	a.saveSettings()
	return nil
}

// ----------------------------------------------------------------------------
// Lifecycle
// ----------------------------------------------------------------------------

// Close stops recording and playback
func (a *App) Close() {
	a.StopRecording()
	a.queue.Close()
}
