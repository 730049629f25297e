// Package notify plays audible feedback: the listening cue and the spoken
// responses synthesized by the TTS layer.
package notify

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const cueRate = beep.SampleRate(44100)

var speakerOnce sync.Once

// initSpeaker sets up the output device once for the process. beep's
// speaker keeps a single global mixer; re-initializing it would cut off
// whatever is playing.
func initSpeaker() error {
	var err error
	speakerOnce.Do(func() {
		err = speaker.Init(cueRate, cueRate.N(time.Second/10))
	})
	return err
}

// PlayMP3 decodes MP3 bytes and plays them, blocking until done.
func PlayMP3(data []byte) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	done := make(chan struct{})
	resampled := beep.Resample(4, format.SampleRate, cueRate, streamer)
	speaker.Play(beep.Seq(resampled, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// Cue plays a short sine beep marking that the assistant heard the
// activation phrase and is listening.
func Cue() error {
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	const (
		freq = 880.0
		dur  = 150 * time.Millisecond
	)
	total := cueRate.N(dur)
	var pos int
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := len(samples)
		if rest := total - pos; rest < n {
			n = rest
		}
		for i := 0; i < n; i++ {
			v := 0.2 * math.Sin(2*math.Pi*freq*float64(pos+i)/float64(cueRate))
			samples[i][0] = v
			samples[i][1] = v
		}
		pos += n
		return n, true
	})

	done := make(chan struct{})
	speaker.Play(beep.Seq(tone, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
