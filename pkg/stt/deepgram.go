package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	deepgramBaseURL = "https://api.deepgram.com"
	deepgramModel   = "nova-2"
)

// Deepgram transcribes recorded audio files through the Deepgram
// prerecorded API.
type Deepgram struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// DeepgramOption configures a [Deepgram] client.
type DeepgramOption func(*Deepgram)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) DeepgramOption {
	return func(d *Deepgram) { d.baseURL = u }
}

// WithModel selects the Deepgram model (default nova-2).
func WithModel(model string) DeepgramOption {
	return func(d *Deepgram) { d.model = model }
}

// WithHTTPClient swaps the HTTP client, e.g. for SOCKS egress.
func WithHTTPClient(c *http.Client) DeepgramOption {
	return func(d *Deepgram) { d.client = c }
}

// NewDeepgram creates a prerecorded-transcription client.
func NewDeepgram(apiKey string, opts ...DeepgramOption) (*Deepgram, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: empty api key")
	}
	d := &Deepgram{
		apiKey:  apiKey,
		baseURL: deepgramBaseURL,
		model:   deepgramModel,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// deepgramResponse mirrors the slice of the prerecorded API response the
// assistant reads: the first alternative of the first channel.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// TranscribeFile uploads the audio file at path and returns its transcript.
func (d *Deepgram) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("deepgram: open %s: %w", path, err)
	}
	defer f.Close()

	u, err := url.Parse(d.baseURL + "/v1/listen")
	if err != nil {
		return "", fmt.Errorf("deepgram: base url: %w", err)
	}
	q := u.Query()
	q.Set("model", d.model)
	q.Set("smart_format", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), f)
	if err != nil {
		return "", fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("deepgram: status %d: %s", resp.StatusCode, body)
	}

	var out deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}
	chans := out.Results.Channels
	if len(chans) == 0 || len(chans[0].Alternatives) == 0 {
		return "", errors.New("deepgram: no transcript in response")
	}
	return chans[0].Alternatives[0].Transcript, nil
}
