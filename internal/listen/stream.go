package listen

import (
	"context"
	"fmt"

	log "log/slog"
)

// FrameSource provides a continuous stream of raw audio frames. The channel
// is fed by the audio driver's callback goroutine; the stream loop is the
// single consumer. The channel closes when the source shuts down.
type FrameSource interface {
	Frames(ctx context.Context) (<-chan []int16, error)
}

// Recognizer consumes raw frames and emits finalized transcripts. Accept
// reports ok=true with the recognized text whenever a result is finalized;
// intermediate frames return ok=false.
type Recognizer interface {
	Accept(frame []int16) (text string, ok bool, err error)
	Close() error
}

// StreamLoop is the streaming capture mode: pull frames from the source
// queue, feed them through the recognizer, and hand each finalized result to
// the utterance session. The frame channel is the only shared resource
// between the audio callback and this loop.
type StreamLoop struct {
	Source  FrameSource
	Rec     Recognizer
	Session *Session
}

// Run consumes frames until the session reports a stop phrase, the source
// closes, or the context is cancelled. Recognizer errors are logged and
// treated as silence.
func (l *StreamLoop) Run(ctx context.Context) error {
	frames, err := l.Source.Frames(ctx)
	if err != nil {
		return fmt.Errorf("open frame stream: %w", err)
	}
	defer l.Rec.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, open := <-frames:
			if !open {
				log.Info("frame stream closed")
				return nil
			}
			text, final, err := l.Rec.Accept(frame)
			if err != nil {
				log.Warn("recognizer error", "err", err)
				continue
			}
			if !final || text == "" {
				continue
			}
			log.Debug("final result", "text", text)
			if !l.Session.Feed(text) {
				return nil
			}
		}
	}
}
