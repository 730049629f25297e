// Package tts turns workflow replies into spoken audio. The primary speaker
// synthesizes through the ElevenLabs API and plays the returned MP3; an
// espeak-ng speaker covers offline use.
package tts

import "context"

// Speaker voices a piece of text and blocks until playback finishes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the [Speaker] interface.
type SpeakerFunc func(ctx context.Context, text string) error

func (f SpeakerFunc) Speak(ctx context.Context, text string) error { return f(ctx, text) }
