// Package stt provides the speech-to-text collaborators for the capture
// loops: a local whisper.cpp transcriber, a Deepgram prerecorded client for
// the chunked mode, and a Deepgram live recognizer for the streaming mode.
package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"hark/pkg/audioconv"
)

// Options tune a whisper transcription run. The zero value is usable.
type Options struct {
	Language      string // "auto" when empty
	Threads       int    // <=0 means NumCPU
	InitialPrompt string // optional prefix prompt
	BeamSize      int    // >0 enables beam search
	Translate     bool   // translate non-English speech to English
}

// Whisper transcribes audio with a local whisper.cpp model.
type Whisper struct {
	model whisper.Model
	opt   Options
}

// NewWhisper loads the ggml model at modelPath.
func NewWhisper(modelPath string, opt Options) (*Whisper, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	return &Whisper{model: m, opt: opt}, nil
}

// Close releases the model.
func (w *Whisper) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

// TranscribeFile decodes path to 16 kHz mono PCM and transcribes it.
func (w *Whisper) TranscribeFile(ctx context.Context, path string) (string, error) {
	pcm, err := audioconv.DecodeFile(path, 0)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return w.TranscribePCM(ctx, pcm)
}

// TranscribePCM transcribes mono float32 samples at [audioconv.SampleRate].
func (w *Whisper) TranscribePCM(ctx context.Context, pcm []float32) (string, error) {
	if w.model == nil {
		return "", errors.New("nil whisper model")
	}
	if len(pcm) == 0 {
		return "", errors.New("no audio samples")
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper context: %w", err)
	}

	lang := w.opt.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(w.opt.Translate)

	threads := w.opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if w.opt.BeamSize > 0 {
		wctx.SetBeamSize(w.opt.BeamSize)
	}
	if w.opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(w.opt.InitialPrompt)
	}

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var text string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if text == "" {
			text = seg.Text
		} else {
			text += " " + seg.Text
		}
	}
	return text, nil
}
