package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "log/slog"

	"hark/internal/notify"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsModel   = "eleven_turbo_v2"
)

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API
// and plays the MP3 reply through the default output device.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	model   string
	baseURL string
	client  *http.Client
	play    func(mp3 []byte) error
}

// ElevenLabsOption configures an [ElevenLabs] speaker.
type ElevenLabsOption func(*ElevenLabs)

// WithElevenLabsBaseURL overrides the API endpoint. Used by tests.
func WithElevenLabsBaseURL(u string) ElevenLabsOption {
	return func(e *ElevenLabs) { e.baseURL = u }
}

// WithElevenLabsModel selects the synthesis model.
func WithElevenLabsModel(model string) ElevenLabsOption {
	return func(e *ElevenLabs) { e.model = model }
}

// WithElevenLabsHTTPClient swaps the HTTP client, e.g. for SOCKS egress.
func WithElevenLabsHTTPClient(c *http.Client) ElevenLabsOption {
	return func(e *ElevenLabs) { e.client = c }
}

// WithPlayer replaces the playback function. Used by tests.
func WithPlayer(play func(mp3 []byte) error) ElevenLabsOption {
	return func(e *ElevenLabs) { e.play = play }
}

// NewElevenLabs creates a speaker for the given voice.
func NewElevenLabs(apiKey, voiceID string, opts ...ElevenLabsOption) (*ElevenLabs, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: empty api key")
	}
	if voiceID == "" {
		return nil, errors.New("elevenlabs: empty voice id")
	}
	e := &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		model:   elevenLabsModel,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		play:    notify.PlayMP3,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Speak synthesizes text and blocks until playback finishes.
func (e *ElevenLabs) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	audio, err := e.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return e.play(audio)
}

// Synthesize returns the MP3 bytes for text without playing them.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}

	log.Debug("synthesized speech",
		"chars", len(text),
		"bytes", len(audio),
		"latency", time.Since(start),
	)
	return audio, nil
}
