// Package audio owns the microphone: fixed-duration chunk capture for the
// chunked listening mode and a callback-fed frame stream for the streaming
// mode. It also ducks other playback streams while the assistant speaks.
package audio

import (
	"context"
	"errors"
	"time"

	log "log/slog"

	"github.com/gordonklaus/portaudio"

	"hark/pkg/audioconv"
)

const frameSize = 320 // 20ms at 16 kHz

// Recorder captures mono 16 kHz audio from the default input device.
// Init must be called once before use and Close once after.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordChunk records for the full duration d and returns the samples.
// The chunked loop calls this back to back; there is no overlap between
// recording and processing.
func (r *Recorder) RecordChunk(d time.Duration) ([]float32, error) {
	if d <= 0 {
		return nil, errors.New("non-positive chunk duration")
	}

	buf := make([]float32, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audioconv.SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	total := int(d.Seconds() * audioconv.SampleRate)
	out := make([]float32, 0, total)
	for len(out) < total {
		if err := stream.Read(); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// Frames opens a continuous input stream and returns the frame channel fed
// by the audio driver's callback. The channel is the single producer/consumer
// boundary of the streaming mode: the callback pushes, the capture loop pops,
// order is FIFO. The channel closes after the context is cancelled and the
// stream is torn down.
//
// A frame is only dropped when the consumer falls behind the buffer; that is
// logged and means the recognizer is too slow, not normal operation.
func (r *Recorder) Frames(ctx context.Context) (<-chan []int16, error) {
	ch := make(chan []int16, 256)

	stream, err := portaudio.OpenDefaultStream(1, 0, audioconv.SampleRate, frameSize,
		func(in []int16) {
			frame := make([]int16, len(in))
			copy(frame, in)
			select {
			case ch <- frame:
			default:
				log.Warn("dropping audio frame, consumer too slow")
			}
		})
	if err != nil {
		return nil, err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, err
	}

	go func() {
		<-ctx.Done()
		if err := stream.Stop(); err != nil {
			log.Warn("stop input stream", "err", err)
		}
		stream.Close()
		close(ch)
	}()

	return ch, nil
}
