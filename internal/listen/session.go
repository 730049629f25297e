// Package listen owns the interaction lifecycle between the microphone and
// the workflow layer: the utterance state machine that brackets a spoken
// interaction between activation and end phrases, plus the chunked and
// streaming capture loops that drive it.
package listen

import (
	"log/slog"
	"strings"
)

// State is the interaction state of a [Session].
type State int

const (
	// Idle means no interaction is being recorded.
	Idle State = iota
	// Recording means fragments are being accumulated until the end phrase.
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// Processor receives the full accumulated utterance of one completed
// interaction. It is called exactly once per interaction, synchronously,
// from the goroutine feeding the session.
type Processor interface {
	Process(command string)
}

// ProcessorFunc adapts a function to the [Processor] interface.
type ProcessorFunc func(command string)

func (f ProcessorFunc) Process(command string) { f(command) }

// Session tracks whether an interaction is in progress and accumulates the
// transcript fragments spoken between the activation phrase and the end
// phrase. A stop phrase terminates the whole listening loop from any state.
//
// Session is not safe for concurrent use; the capture loops feed it from a
// single goroutine, one fragment at a time.
type Session struct {
	activation string
	end        string
	stop       string

	state State
	buf   []string
	proc  Processor
}

// NewSession creates a session in the [Idle] state. The phrases are matched
// case-insensitively by substring containment, like the keyword router.
func NewSession(activation, end, stop string, proc Processor) *Session {
	return &Session{
		activation: strings.ToLower(activation),
		end:        strings.ToLower(end),
		stop:       strings.ToLower(stop),
		proc:       proc,
	}
}

// Feed processes one transcript fragment and reports whether the listening
// loop should keep running. Transitions are evaluated in priority order:
//
//  1. Idle + activation phrase: start recording with an empty buffer.
//     The activation fragment itself is not buffered.
//  2. Recording + end phrase: hand the accumulated buffer to the processor,
//     clear it, and return to Idle. The end fragment is not buffered.
//  3. Stop phrase in any state: report terminate.
//  4. Recording: append the fragment to the buffer.
//  5. Otherwise: no-op.
func (s *Session) Feed(fragment string) bool {
	lowered := strings.ToLower(fragment)

	switch {
	case s.state == Idle && strings.Contains(lowered, s.activation):
		slog.Info("interaction started", "fragment", fragment)
		s.state = Recording
		s.buf = s.buf[:0]

	case s.state == Recording && strings.Contains(lowered, s.end):
		command := strings.Join(s.buf, " ")
		slog.Info("interaction complete", "command", command)
		s.proc.Process(command)
		s.buf = s.buf[:0]
		s.state = Idle

	case strings.Contains(lowered, s.stop):
		slog.Info("stop phrase heard, shutting down", "state", s.state)
		return false

	case s.state == Recording:
		s.buf = append(s.buf, fragment)
	}

	return true
}

// State returns the current interaction state.
func (s *Session) State() State { return s.state }

// Buffer returns the fragments accumulated so far, space-joined.
func (s *Session) Buffer() string { return strings.Join(s.buf, " ") }
