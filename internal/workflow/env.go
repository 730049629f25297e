// Package workflow implements the command handlers the router dispatches to:
// answering questions, running bash, preparing shell commands, generating
// example code from a scraped page, editing the configuration, and ending
// the session. Handlers are synchronous; a failing handler is reported to
// the caller, which logs it and keeps listening.
package workflow

import (
	"context"
	"net/http"

	log "log/slog"

	"hark/internal/config"
	"hark/internal/llm"
	"hark/internal/tts"
)

// Completer is the slice of the LLM client the workflows use.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	CompleteJSON(ctx context.Context, system, prompt string, out any) error
}

// Env carries the collaborators every handler may need. One Env is built at
// startup and shared across dispatches.
type Env struct {
	// ConfigPath is where the configure workflow persists edits.
	ConfigPath string
	Config     *config.Config

	LLM       Completer
	Speaker   tts.Speaker
	Clipboard Clipboard
	Editor    Editor

	// HTTP is used for page scraping. Nil falls back to
	// http.DefaultClient.
	HTTP *http.Client

	// Shell is the binary used to run generated bash commands.
	// Empty means /bin/sh.
	Shell string
}

func (e *Env) persona() string {
	return llm.PersonaHead(e.Config.AssistantName, e.Config.CompanionName)
}

func (e *Env) httpClient() *http.Client {
	if e.HTTP != nil {
		return e.HTTP
	}
	return http.DefaultClient
}

func (e *Env) shell() string {
	if e.Shell != "" {
		return e.Shell
	}
	return "/bin/sh"
}

// speak voices text through the configured speaker.
func (e *Env) speak(ctx context.Context, text string) error {
	return e.Speaker.Speak(ctx, text)
}

// feedback rephrases a status message through the persona and speaks it.
// When the model is unreachable the raw message is spoken instead, so the
// user still hears something.
func (e *Env) feedback(ctx context.Context, message string) error {
	reply, err := e.LLM.Complete(ctx, e.persona(),
		"Concisely communicate the following message to your human companion: '"+message+"'")
	if err != nil {
		log.Warn("feedback rephrase failed, speaking raw message", "err", err)
		reply = message
	}
	return e.speak(ctx, reply)
}
