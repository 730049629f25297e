package listen_test

import (
	"context"
	"testing"

	"hark/internal/listen"
)

// fakeSource replays fixed frames over a buffered channel, mimicking the
// audio callback producer.
type fakeSource struct {
	frames [][]int16
}

func (s *fakeSource) Frames(ctx context.Context) (<-chan []int16, error) {
	ch := make(chan []int16, len(s.frames))
	for _, f := range s.frames {
		ch <- f
	}
	close(ch)
	return ch, nil
}

// scriptedRecognizer finalizes one transcript per frame, in order.
type scriptedRecognizer struct {
	finals []string
	closed bool
}

func (r *scriptedRecognizer) Accept(frame []int16) (string, bool, error) {
	if len(r.finals) == 0 {
		return "", false, nil
	}
	text := r.finals[0]
	r.finals = r.finals[1:]
	return text, true, nil
}

func (r *scriptedRecognizer) Close() error {
	r.closed = true
	return nil
}

func frames(n int) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		out[i] = make([]int16, 320)
	}
	return out
}

func TestStreamLoop_FeedsFinalsInOrder(t *testing.T) {
	t.Parallel()

	var commands []string
	session := listen.NewSession("hello ada", "thanks", "stop listening",
		listen.ProcessorFunc(func(command string) {
			commands = append(commands, command)
		}))

	rec := &scriptedRecognizer{finals: []string{
		"hello ada", "build", "the", "thing", "thanks",
	}}
	loop := &listen.StreamLoop{
		Source:  &fakeSource{frames: frames(5)},
		Rec:     rec,
		Session: session,
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(commands) != 1 || commands[0] != "build the thing" {
		t.Errorf("commands = %v, want [build the thing]", commands)
	}
	if !rec.closed {
		t.Error("recognizer not closed on loop exit")
	}
}

func TestStreamLoop_StopPhraseEndsLoop(t *testing.T) {
	t.Parallel()

	session := listen.NewSession("hello ada", "thanks", "stop listening",
		listen.ProcessorFunc(func(string) {}))

	// Frames keep coming after the stop phrase; the loop must not consume them.
	rec := &scriptedRecognizer{finals: []string{
		"stop listening", "hello ada", "leftover",
	}}
	loop := &listen.StreamLoop{
		Source:  &fakeSource{frames: frames(3)},
		Rec:     rec,
		Session: session,
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.finals) != 2 {
		t.Errorf("%d finals consumed after stop, want 0", 2-len(rec.finals))
	}
	if !rec.closed {
		t.Error("recognizer not closed after stop phrase")
	}
}

func TestStreamLoop_EmptyFinalsIgnored(t *testing.T) {
	t.Parallel()

	var commands []string
	session := listen.NewSession("hello ada", "thanks", "stop listening",
		listen.ProcessorFunc(func(command string) {
			commands = append(commands, command)
		}))

	rec := &scriptedRecognizer{finals: []string{
		"hello ada", "", "payload", "", "thanks",
	}}
	loop := &listen.StreamLoop{
		Source:  &fakeSource{frames: frames(5)},
		Rec:     rec,
		Session: session,
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(commands) != 1 || commands[0] != "payload" {
		t.Errorf("commands = %v, want [payload]", commands)
	}
}
