package stt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	log "log/slog"

	"github.com/gorilla/websocket"

	"hark/pkg/audioconv"
)

// DeepgramLive is a streaming recognizer over the Deepgram live WebSocket
// API. The capture loop pushes raw frames in; finalized transcripts come
// back out of Accept as they are produced.
type DeepgramLive struct {
	conn   *websocket.Conn
	finals chan string
	done   chan struct{}

	mu      sync.Mutex // guards writes to conn
	readErr error      // set by the read loop before closing done
	closed  bool
}

// NewDeepgramLive dials the live endpoint and starts the result reader.
// baseURL overrides the endpoint when non-empty (tests); it must use the
// ws or wss scheme.
func NewDeepgramLive(ctx context.Context, apiKey, model, baseURL string) (*DeepgramLive, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram live: empty api key")
	}
	if model == "" {
		model = deepgramModel
	}
	if baseURL == "" {
		baseURL = "wss://api.deepgram.com"
	}

	u, err := url.Parse(baseURL + "/v1/listen")
	if err != nil {
		return nil, fmt.Errorf("deepgram live: base url: %w", err)
	}
	q := u.Query()
	q.Set("model", model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprint(audioconv.SampleRate))
	q.Set("channels", "1")
	q.Set("punctuate", "true")
	q.Set("interim_results", "false")
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Token "+apiKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("deepgram live: dial: %w", err)
	}

	d := &DeepgramLive{
		conn:   conn,
		finals: make(chan string, 64),
		done:   make(chan struct{}),
	}
	go d.readLoop()
	return d, nil
}

// liveResult mirrors the fields of a live API message the assistant reads.
type liveResult struct {
	IsFinal bool `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// readLoop drains result messages into the finals channel until the
// connection dies. Results arriving faster than the consumer drains them
// are dropped with a warning rather than blocking the socket reader.
func (d *DeepgramLive) readLoop() {
	defer close(d.done)
	for {
		_, msg, err := d.conn.ReadMessage()
		if err != nil {
			d.readErr = err
			return
		}

		var res liveResult
		if err := json.Unmarshal(msg, &res); err != nil {
			log.Debug("deepgram live: skipping message", "err", err)
			continue
		}
		if !res.IsFinal || len(res.Channel.Alternatives) == 0 {
			continue
		}
		text := res.Channel.Alternatives[0].Transcript
		if text == "" {
			continue
		}
		select {
		case d.finals <- text:
		default:
			log.Warn("deepgram live: dropping final, consumer too slow", "text", text)
		}
	}
}

// Accept sends one audio frame and returns a finalized transcript when one
// is available. Finals are decoupled from frames: a frame may produce zero
// finals and a later call may return one recognized earlier.
func (d *DeepgramLive) Accept(frame []int16) (string, bool, error) {
	select {
	case <-d.done:
		return "", false, fmt.Errorf("deepgram live: connection closed: %w", d.readErr)
	default:
	}

	buf := make([]byte, len(frame)*2)
	for i, s := range frame {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	d.mu.Lock()
	err := d.conn.WriteMessage(websocket.BinaryMessage, buf)
	d.mu.Unlock()
	if err != nil {
		return "", false, fmt.Errorf("deepgram live: send frame: %w", err)
	}

	select {
	case text := <-d.finals:
		return text, true, nil
	default:
		return "", false, nil
	}
}

// Close tells Deepgram the stream is over and tears down the connection.
func (d *DeepgramLive) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	// Best effort: the server finalizes pending audio on CloseStream.
	_ = d.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
	return d.conn.Close()
}
