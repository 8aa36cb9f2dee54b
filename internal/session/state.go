// Package session holds flags shared between the UI and the turn loop.
package session

import "sync/atomic"

// State is passed explicitly to every goroutine that reads or flips the
// assistant's runtime flags. The zero value is ready to use.
type State struct {
	paused   atomic.Bool
	speaking atomic.Bool
}

// Pause stops new utterances from being processed.
func (s *State) Pause() { s.paused.Store(true) }

// Resume re-enables utterance processing.
func (s *State) Resume() { s.paused.Store(false) }

// TogglePause flips the paused flag and returns the new value.
func (s *State) TogglePause() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether processing is paused.
func (s *State) Paused() bool { return s.paused.Load() }

// SetSpeaking records whether a reply is being delivered.
func (s *State) SetSpeaking(v bool) { s.speaking.Store(v) }

// Speaking reports whether a reply is being delivered.
func (s *State) Speaking() bool { return s.speaking.Load() }
