package listen_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"hark/internal/listen"
	"hark/internal/router"
)

type fakeRecorder struct {
	chunks [][]float32
}

func (r *fakeRecorder) RecordChunk(time.Duration) ([]float32, error) {
	if len(r.chunks) == 0 {
		return nil, errors.New("out of chunks")
	}
	chunk := r.chunks[0]
	r.chunks = r.chunks[1:]
	return chunk, nil
}

type fakeTranscriber struct {
	texts []string
	err   error
	paths []string
}

func (tr *fakeTranscriber) TranscribeFile(_ context.Context, path string) (string, error) {
	tr.paths = append(tr.paths, path)
	if tr.err != nil {
		return "", tr.err
	}
	if len(tr.texts) == 0 {
		return "", nil
	}
	text := tr.texts[0]
	tr.texts = tr.texts[1:]
	return text, nil
}

type fakeDispatcher struct {
	ids      []router.ID
	commands []string
	stop     bool
	err      error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, id router.ID, command string) (bool, error) {
	d.ids = append(d.ids, id)
	d.commands = append(d.commands, command)
	return d.stop, d.err
}

func newChunkLoop(rec *fakeRecorder, stt *fakeTranscriber, disp *fakeDispatcher, tempDir string) *listen.ChunkLoop {
	return &listen.ChunkLoop{
		Rec:        rec,
		STT:        stt,
		Dispatch:   disp,
		Table:      router.Default(),
		Activation: "ada",
		Duration:   10 * time.Second,
		TempDir:    tempDir,
	}
}

func TestChunkLoop_ActivationRoutesRemainder(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160)}}
	stt := &fakeTranscriber{texts: []string{"hey ada run a bash command"}}
	disp := &fakeDispatcher{}
	loop := newChunkLoop(rec, stt, disp, t.TempDir())

	stop, _, err := loop.Step(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if stop {
		t.Error("Step requested stop without exit workflow")
	}
	if len(disp.ids) != 1 || disp.ids[0] != router.Bash {
		t.Fatalf("dispatched %v, want [bash]", disp.ids)
	}
	// The handler receives the extracted remainder, not the full transcript.
	if disp.commands[0] != "run a bash command" {
		t.Errorf("command = %q, want %q", disp.commands[0], "run a bash command")
	}
}

func TestChunkLoop_NoActivationNoDispatch(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160)}}
	stt := &fakeTranscriber{texts: []string{"run a bash command"}}
	disp := &fakeDispatcher{}
	loop := newChunkLoop(rec, stt, disp, t.TempDir())

	if _, _, err := loop.Step(context.Background(), time.Time{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(disp.ids) != 0 {
		t.Errorf("dispatched %v, want none", disp.ids)
	}
}

func TestChunkLoop_TranscriptionFailureIsEmptyTranscript(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160)}}
	stt := &fakeTranscriber{err: errors.New("stt unavailable")}
	disp := &fakeDispatcher{}
	loop := newChunkLoop(rec, stt, disp, t.TempDir())

	stop, _, err := loop.Step(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Step must absorb transcription errors, got %v", err)
	}
	if stop || len(disp.ids) != 0 {
		t.Errorf("stop=%v dispatched=%v, want loop to continue silently", stop, disp.ids)
	}
}

func TestChunkLoop_TempFileRemoved(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160), make([]float32, 160)}}
	stt := &fakeTranscriber{err: errors.New("boom")}
	disp := &fakeDispatcher{}
	loop := newChunkLoop(rec, stt, disp, dir)

	// One failing and one clean iteration; neither may leak its chunk file.
	if _, _, err := loop.Step(context.Background(), time.Time{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	stt.err = nil
	stt.texts = []string{"nothing relevant"}
	if _, _, err := loop.Step(context.Background(), time.Time{}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(stt.paths) != 2 {
		t.Fatalf("transcriber saw %d files, want 2", len(stt.paths))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d chunk files leaked in %s", len(entries), dir)
	}
}

func TestChunkLoop_ExitWorkflowStopsLoop(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160)}}
	stt := &fakeTranscriber{texts: []string{"ada exit for today"}}
	disp := &fakeDispatcher{stop: true}
	loop := newChunkLoop(rec, stt, disp, t.TempDir())

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(disp.ids) != 1 || disp.ids[0] != router.Exit {
		t.Errorf("dispatched %v, want [exit]", disp.ids)
	}
}

func TestChunkLoop_HandlerErrorDoesNotStop(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{chunks: [][]float32{make([]float32, 160)}}
	stt := &fakeTranscriber{texts: []string{"ada question about maps"}}
	disp := &fakeDispatcher{err: errors.New("provider down")}
	loop := newChunkLoop(rec, stt, disp, t.TempDir())

	stop, _, err := loop.Step(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Step must absorb handler errors, got %v", err)
	}
	if stop {
		t.Error("handler error stopped the loop")
	}
}
