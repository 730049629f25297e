package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "log/slog"
)

type codeReply struct {
	Code string `json:"code"`
}

type fileNameReply struct {
	FileName string `json:"file_name"`
}

// ExampleCode turns a documentation page into a runnable example file. The
// URL comes from the clipboard (editor prompt as fallback), the page is
// scraped, the code goes through three generation passes, and the named
// result is written under the configured working directory.
func ExampleCode(ctx context.Context, env *Env, command string) (bool, error) {
	url, err := env.Clipboard.Paste()
	if err != nil {
		log.Warn("clipboard read failed", "err", err)
	}
	url = strings.TrimSpace(url)

	if !strings.Contains(url, "http") {
		if err := env.feedback(ctx, "I don't see a URL on your clipboard. Please paste a URL into your editor."); err != nil {
			return false, err
		}
		url, err = env.Editor.Edit("")
		if err != nil {
			return false, err
		}
		url = strings.TrimSpace(url)
	}
	if url == "" {
		return false, env.feedback(ctx, "Still no URL found. Skipping this request.")
	}

	if err := env.feedback(ctx,
		"I found the URL. I'll scrape it and generate example code. First, what should the example focus on?"); err != nil {
		return false, err
	}
	focus, err := env.Editor.Edit("")
	if err != nil {
		return false, err
	}
	focus = strings.TrimSpace(focus)

	log.Info("scraping page", "url", url, "focus", focus)
	page, err := ScrapeText(ctx, env.httpClient(), url)
	if err != nil {
		return false, err
	}

	code, err := generateExample(ctx, env, url, focus, page)
	if err != nil {
		return false, err
	}

	namePrompt := fmt.Sprintf(`You've just generated the CODE below for your human companion.
Create a file name for the code file that will be written to the following directory: %s
The file name should be unique and descriptive of the code it contains.
Respond exclusively with the file name in the following JSON format: {"file_name": ""}.

CODE:
%s`, env.Config.WorkingDirectory, code)

	var name fileNameReply
	if err := env.LLM.CompleteJSON(ctx, env.persona(), namePrompt, &name); err != nil {
		return false, err
	}
	if name.FileName == "" {
		return false, fmt.Errorf("example code workflow: model returned no file name")
	}

	path := filepath.Join(env.Config.WorkingDirectory, filepath.Base(name.FileName))
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return false, fmt.Errorf("example code workflow: write %s: %w", path, err)
	}
	log.Info("example code written", "path", path)

	return false, env.feedback(ctx,
		fmt.Sprintf("Code has been written to a file named %s in the working directory. Anything else?", filepath.Base(path)))
}

// generateExample runs the three-pass draft, cleanup, finalize sequence.
// Each pass feeds the previous pass's code back in.
func generateExample(ctx context.Context, env *Env, url, focus, page string) (string, error) {
	draftPrompt := fmt.Sprintf(`You're a professional software developer advocate that takes pride in writing good code.
You take documentation and convert it into runnable code.

You have a new request to generate code for the following url: '%s' with a focus on '%s'.
Given the scraped WEBSITE_CONTENT below, generate working code showcasing how to use it.
Use detailed variable and function names and comment the code.
Respond in this JSON format exclusively: {"code": ""}

WEBSITE_CONTENT:
%s`, url, focus, page)

	var draft codeReply
	if err := env.LLM.CompleteJSON(ctx, env.persona(), draftPrompt, &draft); err != nil {
		return "", err
	}

	refinePrompts := []string{
		`You are an elite level, principal software engineer.
You've just generated the first draft EXAMPLE_CODE below and are taking a second pass to clean it up.
Make sure it is immediately runnable, remove anything that is not runnable code, keep it well commented and formatted.
Respond in JSON format with the following keys: {"code": ""}

EXAMPLE_CODE:
%s`,
		`You are a top-level programmer and super-expert in software engineering.
You've received a near final draft of EXAMPLE_CODE to finalize.
Take a final pass: the code must be immediately runnable, contain nothing but runnable code, and follow best practices.
Respond in JSON format with the following keys: {"code": ""}

EXAMPLE_CODE:
%s`,
	}

	code := draft.Code
	for _, p := range refinePrompts {
		var pass codeReply
		if err := env.LLM.CompleteJSON(ctx, env.persona(), fmt.Sprintf(p, code), &pass); err != nil {
			return "", err
		}
		code = pass.Code
	}

	if code == "" {
		return "", fmt.Errorf("example code workflow: model returned no code")
	}
	return code, nil
}
