// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     app
// Description: Tests for the controller
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voicedesk/internal/api"
	"voicedesk/internal/config"
	"voicedesk/internal/persona"
	"voicedesk/internal/session"
	"voicedesk/internal/transport"
	"voicedesk/internal/vad"
	"voicedesk/pkg/logging"
)

// fakeCapture feeds canned frames to the pump. Like the real capture,
// Stop does not close the frames channel itself; the producer side
// closes it once the session ends.
type fakeCapture struct {
	frames     chan []float32
	stop       chan struct{}
	stopOnce   sync.Once
	closeCalls atomic.Int32
}

func newFakeCapture() *fakeCapture {
	return &fakeCapture{
		frames: make(chan []float32, 16),
		stop:   make(chan struct{}),
	}
}

func (f *fakeCapture) Start(ctx context.Context) error {
	go func() {
		<-f.stop
		close(f.frames)
	}()
	return nil
}

func (f *fakeCapture) Stop() error {
	f.stopOnce.Do(func() { close(f.stop) })
	return nil
}

func (f *fakeCapture) Close() error {
	f.Stop()
	f.closeCalls.Add(1)
	return nil
}

func (f *fakeCapture) Frames() <-chan []float32 { return f.frames }

// fakeStream records sent PCM and exposes its handlers
type fakeStream struct {
	mu       sync.Mutex
	handlers transport.Handlers
	sent     [][]byte
	closed   bool
}

func (f *fakeStream) Connect(ctx context.Context) error { return nil }

func (f *fakeStream) SendPCM(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// silentPlayer satisfies audio.Player without any device
type silentPlayer struct{}

func (silentPlayer) PlayPCM16(ctx context.Context, data []byte, sampleRate, channels int) error {
	return nil
}
func (silentPlayer) Close() error { return nil }

type testHarness struct {
	app     *App
	stream  *fakeStream
	capture *fakeCapture
}

func newTestApp(t *testing.T, handler http.Handler) *testHarness {
	t.Helper()

	var baseURL string
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		baseURL = server.URL
	} else {
		baseURL = "http://localhost:0"
	}

	dir := t.TempDir()
	store, err := session.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	log := logging.NewWithConfig(logging.Config{Output: io.Discard})
	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = baseURL

	h := &testHarness{
		stream:  &fakeStream{},
		capture: newFakeCapture(),
	}

	a, err := New(Options{
		Config:        cfg,
		Settings:      config.DefaultSettings(),
		SettingsStore: config.NewSettingsStore(dir),
		Store:         store,
		Client:        api.NewClient(api.Config{BaseURL: baseURL}, log),
		Player:        silentPlayer{},
		Personas:      persona.NewRegistry(),
		Log:           log,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)

	a.newCapture = func() (captureSource, error) { return h.capture, nil }
	a.newStream = func(handlers transport.Handlers) (streamConn, error) {
		h.stream.handlers = handlers
		return h.stream, nil
	}
	a.newDetector = func() (vad.Detector, error) { return nil, fmt.Errorf("no detector in tests") }

	h.app = a
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewActivatesSession(t *testing.T) {
	h := newTestApp(t, nil)

	msgs := h.app.Messages()
	if len(msgs) != 1 {
		t.Fatalf("fresh app has %d messages, want the greeting", len(msgs))
	}
	if msgs[0].Role != session.RoleAssistant {
		t.Errorf("greeting role = %q, want assistant", msgs[0].Role)
	}
	if h.app.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", h.app.State())
	}
}

func TestToggleRecordingRoundTrip(t *testing.T) {
	h := newTestApp(t, nil)

	h.app.ToggleRecording()
	waitFor(t, "listening state", func() bool { return h.app.State() == StateListening })

	// Frames flow to the stream as encoded PCM.
	h.capture.frames <- []float32{0.5, -0.5}
	waitFor(t, "frame delivery", func() bool { return h.stream.sentCount() > 0 })

	h.stream.mu.Lock()
	frame := h.stream.sent[0]
	h.stream.mu.Unlock()
	if len(frame) != 4 {
		t.Errorf("encoded frame = %d bytes, want 4 for two samples", len(frame))
	}

	h.app.ToggleRecording()
	waitFor(t, "idle state", func() bool { return h.app.State() == StateIdle })

	h.stream.mu.Lock()
	closed := h.stream.closed
	h.stream.mu.Unlock()
	if !closed {
		t.Error("stream should be closed after stop")
	}
}

func TestStopRecordingReleasesCapture(t *testing.T) {
	h := newTestApp(t, nil)

	h.app.ToggleRecording()
	waitFor(t, "listening state", func() bool { return h.app.State() == StateListening })

	h.app.ToggleRecording()
	waitFor(t, "idle state", func() bool { return h.app.State() == StateIdle })

	// Stopping must let the pump drain out and then close the capture,
	// otherwise every toggle leaks a goroutine and an audio backend
	// initialization. Close only fires after the pump has exited.
	waitFor(t, "capture release", func() bool { return h.capture.closeCalls.Load() > 0 })
}

func TestTranscriptAppendsFromStream(t *testing.T) {
	h := newTestApp(t, nil)

	h.app.ToggleRecording()
	waitFor(t, "listening state", func() bool { return h.app.State() == StateListening })

	h.stream.handlers.OnFinal("what time is it")
	h.stream.handlers.OnAssistant("it is noon")

	msgs := h.app.Messages()
	if len(msgs) != 3 {
		t.Fatalf("transcript has %d messages, want greeting + 2", len(msgs))
	}
	if msgs[1].Role != session.RoleUser || msgs[1].Text != "what time is it" {
		t.Errorf("message 1 = %+v", msgs[1])
	}
	if msgs[2].Role != session.RoleAssistant || msgs[2].Text != "it is noon" {
		t.Errorf("message 2 = %+v", msgs[2])
	}

	// The first user utterance titles the session.
	_, title := h.app.ActiveSession()
	if title != "what time is it" {
		t.Errorf("title = %q, want derived from utterance", title)
	}
}

func TestStartFailureEntersErrorState(t *testing.T) {
	h := newTestApp(t, nil)
	h.app.newCapture = func() (captureSource, error) {
		return nil, fmt.Errorf("no microphone")
	}

	h.app.ToggleRecording()
	waitFor(t, "error state", func() bool { return h.app.State() == StateError })

	// Toggling again acknowledges the error back to idle without
	// starting a new session.
	h.app.ToggleRecording()
	if h.app.State() != StateIdle {
		t.Errorf("state = %v after acknowledge, want idle", h.app.State())
	}
}

func TestSendText(t *testing.T) {
	clip := base64.StdEncoding.EncodeToString([]byte("RIFFxxxxWAVE"))
	h := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["chat_id"] == "" {
			t.Error("chat request missing chat_id")
		}
		json.NewEncoder(w).Encode(api.ChatResponse{
			Success:  true,
			Response: "echo: " + body["message"],
			Audio:    clip,
		})
	}))

	h.app.SendText("hello")
	waitFor(t, "assistant reply", func() bool { return len(h.app.Messages()) == 3 })

	msgs := h.app.Messages()
	if msgs[1].Text != "hello" {
		t.Errorf("user message = %q", msgs[1].Text)
	}
	if msgs[2].Text != "echo: hello" {
		t.Errorf("assistant message = %q", msgs[2].Text)
	}
}

func TestSendTextAPIKeyError(t *testing.T) {
	h := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"invalid API key"}`)
	}))

	h.app.SendText("hello")
	waitFor(t, "error reply", func() bool { return len(h.app.Messages()) == 3 })

	msgs := h.app.Messages()
	if msgs[2].Text != msgAPIKeyProblem {
		t.Errorf("assistant message = %q, want the API key wording", msgs[2].Text)
	}
}

func TestUploadRejectedLocally(t *testing.T) {
	calls := 0
	h := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	if err := h.app.UploadFile("notes.txt"); err == nil {
		t.Fatal("UploadFile() should reject a .txt file")
	}
	if calls != 0 {
		t.Errorf("server saw %d calls, want 0", calls)
	}
	if len(h.app.Messages()) != 1 {
		t.Error("rejected upload should not touch the transcript")
	}
}

func TestDeleteActiveSessionCreatesReplacement(t *testing.T) {
	h := newTestApp(t, nil)

	activeID, _ := h.app.ActiveSession()
	if err := h.app.DeleteSession(activeID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	newID, _ := h.app.ActiveSession()
	if newID == activeID {
		t.Error("active session id unchanged after deleting it")
	}
	if len(h.app.Messages()) != 1 {
		t.Errorf("replacement session has %d messages, want just the greeting", len(h.app.Messages()))
	}
}

func TestDeleteOtherSessionKeepsActive(t *testing.T) {
	h := newTestApp(t, nil)

	activeID, _ := h.app.ActiveSession()
	if err := h.app.NewSession(); err != nil {
		t.Fatal(err)
	}
	currentID, _ := h.app.ActiveSession()

	if err := h.app.DeleteSession(activeID); err != nil {
		t.Fatal(err)
	}

	stillID, _ := h.app.ActiveSession()
	if stillID != currentID {
		t.Errorf("active session = %s after deleting another, want %s", stillID, currentID)
	}
}

func TestSwitchSession(t *testing.T) {
	h := newTestApp(t, nil)

	firstID, _ := h.app.ActiveSession()
	if err := h.app.NewSession(); err != nil {
		t.Fatal(err)
	}

	if err := h.app.SwitchSession(firstID); err != nil {
		t.Fatalf("SwitchSession() error = %v", err)
	}
	gotID, _ := h.app.ActiveSession()
	if gotID != firstID {
		t.Errorf("active = %s, want %s", gotID, firstID)
	}

	if err := h.app.SwitchSession("chat_0_0"); err == nil {
		t.Error("SwitchSession() to unknown id should fail")
	}
}

func TestSaveAPIKeysMirrorsOnSuccessOnly(t *testing.T) {
	succeed := false
	h := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if succeed {
			fmt.Fprint(w, `{"success":true,"message":"saved"}`)
		} else {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid API key format"}`)
		}
	}))

	keys := map[string]string{api.KeyGemini: "value-1"}

	if err := h.app.SaveAPIKeys(context.Background(), keys); err == nil {
		t.Fatal("SaveAPIKeys() should fail when the server rejects")
	}
	if got := h.app.Settings().APIKeys[api.KeyGemini]; got != "" {
		t.Errorf("mirror = %q after rejected save, want untouched", got)
	}

	succeed = true
	if err := h.app.SaveAPIKeys(context.Background(), keys); err != nil {
		t.Fatalf("SaveAPIKeys() error = %v", err)
	}
	if got := h.app.Settings().APIKeys[api.KeyGemini]; got != "value-1" {
		t.Errorf("mirror = %q after confirmed save, want value-1", got)
	}
}

func TestSettingsTogglesPersist(t *testing.T) {
	h := newTestApp(t, nil)

	h.app.SetAutoPlay(false)
	h.app.SetDarkMode(false)
	h.app.SetVoiceActivityDetection(false)

	s := h.app.Settings()
	if s.AutoPlay || s.DarkMode || s.VoiceActivityDetection {
		t.Errorf("settings = %+v, want all toggles off", s)
	}
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	calls := 0
	h := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	h.app.Translate("hello", "klingon", "girl")
	time.Sleep(100 * time.Millisecond)
	if calls != 0 {
		t.Errorf("server saw %d calls for an unsupported language, want 0", calls)
	}
}
