package stt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"hark/pkg/stt"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk.wav")
	if err := os.WriteFile(path, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func deepgramPayload(transcript string) map[string]any {
	return map[string]any{
		"results": map[string]any{
			"channels": []any{
				map[string]any{
					"alternatives": []any{
						map[string]any{"transcript": transcript},
					},
				},
			},
		},
	}
}

func TestDeepgram_TranscribeFile(t *testing.T) {
	t.Parallel()

	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotModel = r.URL.Query().Get("model")
		json.NewEncoder(w).Encode(deepgramPayload("hey ada run a bash command"))
	}))
	defer srv.Close()

	d, err := stt.NewDeepgram("test-key", stt.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewDeepgram: %v", err)
	}

	text, err := d.TranscribeFile(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if text != "hey ada run a bash command" {
		t.Errorf("transcript = %q", text)
	}
	if gotAuth != "Token test-key" {
		t.Errorf("Authorization = %q, want token header", gotAuth)
	}
	if gotModel != "nova-2" {
		t.Errorf("model = %q, want nova-2", gotModel)
	}
}

func TestDeepgram_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d, err := stt.NewDeepgram("test-key", stt.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewDeepgram: %v", err)
	}
	if _, err := d.TranscribeFile(context.Background(), writeTempAudio(t)); err == nil {
		t.Error("TranscribeFile succeeded on 429, want error")
	}
}

func TestDeepgram_EmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": map[string]any{}})
	}))
	defer srv.Close()

	d, err := stt.NewDeepgram("test-key", stt.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewDeepgram: %v", err)
	}
	if _, err := d.TranscribeFile(context.Background(), writeTempAudio(t)); err == nil {
		t.Error("TranscribeFile succeeded on empty results, want error")
	}
}

func TestDeepgram_RequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := stt.NewDeepgram(""); err == nil {
		t.Error("NewDeepgram(\"\") succeeded, want error")
	}
}
