package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hark/internal/config"
)

// Configure opens the configuration as JSON in the user's editor, persists
// the edited document, and speaks a one-sentence summary of what changed.
func Configure(ctx context.Context, env *Env, command string) (bool, error) {
	if err := env.feedback(ctx, "I've opened the configuration file and am ready for you to edit it."); err != nil {
		return false, err
	}

	before, err := json.MarshalIndent(env.Config, "", "  ")
	if err != nil {
		return false, fmt.Errorf("configure workflow: marshal: %w", err)
	}

	edited, err := env.Editor.Edit(string(before))
	if err != nil {
		return false, err
	}

	var updated config.Config
	if err := json.Unmarshal([]byte(edited), &updated); err != nil {
		return false, fmt.Errorf("configure workflow: edited document does not parse: %w", err)
	}
	if updated.WorkingDirectory == "" {
		updated.WorkingDirectory = config.Default().WorkingDirectory
	}

	if err := config.Save(env.ConfigPath, updated); err != nil {
		return false, err
	}
	*env.Config = updated

	after, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return false, fmt.Errorf("configure workflow: marshal: %w", err)
	}

	diff := diffLines(string(before), string(after))
	if diff == "" {
		return false, env.feedback(ctx, "No changes made to the configuration.")
	}

	summary, err := env.LLM.Complete(ctx, env.persona(), fmt.Sprintf(`Your companion has just finished editing the configuration file.
Concisely summarize the changes in one sentence, acknowledging what changed.

The changes are:

%s`, diff))
	if err != nil {
		return false, err
	}
	return false, env.speak(ctx, summary)
}

// diffLines renders a minimal line diff: lines dropped from before prefixed
// with "-", lines new in after prefixed with "+". Good enough for a small
// configuration document.
func diffLines(before, after string) string {
	beforeLines := strings.Split(before, "\n")
	afterSet := make(map[string]bool, len(beforeLines))
	for _, l := range strings.Split(after, "\n") {
		afterSet[l] = true
	}
	beforeSet := make(map[string]bool, len(beforeLines))
	for _, l := range beforeLines {
		beforeSet[l] = true
	}

	var out []string
	for _, l := range beforeLines {
		if !afterSet[l] {
			out = append(out, "- "+l)
		}
	}
	for _, l := range strings.Split(after, "\n") {
		if !beforeSet[l] {
			out = append(out, "+ "+l)
		}
	}
	return strings.Join(out, "\n")
}
