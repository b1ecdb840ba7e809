package voice

import (
	"log/slog"
	"sync"

	"github.com/zombor/swiftcart/internal/cart"
)

// Recognizer emits one finalized transcript per listening session
type Recognizer interface {
	// Start begins a listening session; onResult receives the final transcript
	Start(onResult func(transcript string)) error
	// Stop ends the session
	Stop()
}

// Synthesizer speaks a response. Fire and forget.
type Synthesizer interface {
	Speak(text string)
}

// NopRecognizer stands in where speech recognition is unsupported
type NopRecognizer struct{}

func (NopRecognizer) Start(func(string)) error { return nil }
func (NopRecognizer) Stop()                    {}

// NopSynthesizer stands in where speech synthesis is unsupported
type NopSynthesizer struct{}

func (NopSynthesizer) Speak(string) {}

// Assistant wires a recognizer to the command interpreter and speaks the
// response. The assistant only reads the cart, never mutates it.
type Assistant struct {
	store       *cart.Store
	recognizer  Recognizer
	synthesizer Synthesizer

	mu         sync.Mutex
	listening  bool
	transcript string
}

// NewAssistant creates an Assistant. Nil collaborators get no-op stand-ins,
// which disables the feature without a user-facing failure.
func NewAssistant(store *cart.Store, recognizer Recognizer, synthesizer Synthesizer) *Assistant {
	if recognizer == nil {
		slog.Warn("Speech recognition unsupported, voice commands disabled")
		recognizer = NopRecognizer{}
	}
	if synthesizer == nil {
		slog.Warn("Speech synthesis unsupported, voice responses disabled")
		synthesizer = NopSynthesizer{}
	}
	return &Assistant{
		store:       store,
		recognizer:  recognizer,
		synthesizer: synthesizer,
	}
}

// ToggleListening starts or stops a listening session
func (a *Assistant) ToggleListening() {
	a.mu.Lock()
	listening := a.listening
	a.listening = !listening
	a.mu.Unlock()

	if listening {
		a.recognizer.Stop()
		return
	}
	if err := a.recognizer.Start(a.onResult); err != nil {
		slog.Error("Error starting speech recognition", "error", err)
		a.mu.Lock()
		a.listening = false
		a.mu.Unlock()
	}
}

// Listening reports whether a session is active
func (a *Assistant) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// LastTranscript returns the most recent recognized utterance
func (a *Assistant) LastTranscript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript
}

// HandleTranscript interprets a finalized utterance, speaks the response and
// returns it
func (a *Assistant) HandleTranscript(transcript string) string {
	a.mu.Lock()
	a.transcript = transcript
	a.mu.Unlock()

	response := Respond(transcript, a.store.Items(), a.store.TotalCents())
	a.synthesizer.Speak(response)
	return response
}

func (a *Assistant) onResult(transcript string) {
	a.mu.Lock()
	a.listening = false
	a.mu.Unlock()
	a.HandleTranscript(transcript)
}
