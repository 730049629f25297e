package listen

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "log/slog"

	"hark/internal/router"
	"hark/pkg/audioconv"
)

// ChunkRecorder records one fixed-duration audio segment from the default
// input device. Samples are mono float32 at [audioconv.SampleRate].
type ChunkRecorder interface {
	RecordChunk(d time.Duration) ([]float32, error)
}

// Transcriber converts a recorded audio file into text. Implementations live
// in pkg/stt. Failures are recoverable: the loop logs them and carries on
// with an empty transcript.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Dispatcher runs the workflow resolved for a command. It reports whether
// the loop should stop (the exit workflow does) alongside any handler error.
type Dispatcher interface {
	Dispatch(ctx context.Context, id router.ID, command string) (stop bool, err error)
}

// ChunkLoop is the chunked capture mode: record a fixed-duration segment,
// persist it to a temporary WAV file, transcribe, and when the transcript
// contains the activation keyword route the remainder to a workflow.
//
// The loop is fully synchronous: one iteration completes (including any
// workflow side effects) before the next recording starts, so handler
// latency directly delays the next listening window.
type ChunkLoop struct {
	Rec        ChunkRecorder
	STT        Transcriber
	Dispatch   Dispatcher
	Table      router.Table
	Activation string
	Duration   time.Duration
	TempDir    string // "" means the OS default
}

// Run iterates until the context is cancelled or a workflow asks to stop.
func (l *ChunkLoop) Run(ctx context.Context) error {
	var handledAt time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stop, next, err := l.Step(ctx, handledAt)
		if err != nil {
			return err
		}
		handledAt = next
		if stop {
			return nil
		}
	}
}

// Step runs one record→transcribe→route→handle iteration. handledAt is the
// completion time of the previous handled command (zero when none); Step logs
// the gap as interaction latency and returns the new value. The returned
// error is fatal (device failure); transcription and handler errors are
// logged and absorbed.
func (l *ChunkLoop) Step(ctx context.Context, handledAt time.Time) (stop bool, next time.Time, err error) {
	if !handledAt.IsZero() {
		log.Debug("interaction latency", "since_last", time.Since(handledAt))
	}
	next = handledAt

	log.Debug("recording chunk", "duration", l.Duration)
	pcm, err := l.Rec.RecordChunk(l.Duration)
	if err != nil {
		return false, next, fmt.Errorf("record chunk: %w", err)
	}

	transcript := l.transcribeChunk(ctx, pcm)
	if transcript == "" {
		return false, next, nil
	}
	log.Info("transcript", "text", transcript)

	if !strings.Contains(strings.ToLower(transcript), strings.ToLower(l.Activation)) {
		return false, next, nil
	}

	command := router.TextAfterKeyword(transcript, l.Activation)
	return l.handle(ctx, command), time.Now(), nil
}

// transcribeChunk writes pcm to a temporary WAV file, hands it to the
// transcriber, and removes the file again. Any failure is logged and turned
// into an empty transcript so the loop keeps listening.
func (l *ChunkLoop) transcribeChunk(ctx context.Context, pcm []float32) string {
	if len(pcm) == 0 {
		return ""
	}

	f, err := os.CreateTemp(l.TempDir, "hark-chunk-*.wav")
	if err != nil {
		log.Warn("create chunk file failed", "err", err)
		return ""
	}
	path := f.Name()
	defer os.Remove(path)

	if err := audioconv.EncodeWAV(f, pcm, audioconv.SampleRate); err != nil {
		f.Close()
		log.Warn("encode chunk failed", "err", err)
		return ""
	}
	if err := f.Close(); err != nil {
		log.Warn("close chunk file failed", "err", err)
		return ""
	}

	text, err := l.STT.TranscribeFile(ctx, path)
	if err != nil {
		log.Warn("transcription failed", "err", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// handle routes command and runs its workflow. Handler errors never stop the
// loop; only an explicit stop request from the workflow does.
func (l *ChunkLoop) handle(ctx context.Context, command string) (stop bool) {
	id, ok := l.Table.Route(command)
	if !ok {
		log.Info("no workflow for command", "command", command)
		return false
	}

	log.Info("dispatching", "workflow", id, "command", command)
	stop, err := l.Dispatch.Dispatch(ctx, id, command)
	if err != nil {
		log.Error("workflow failed", "workflow", id, "err", err)
	}
	return stop
}
