package workflow

import (
	"context"
	"fmt"
	"os/exec"

	log "log/slog"
)

type bashReply struct {
	BashCommandToRun string `json:"bash_command_to_run"`
}

// Bash asks the model to translate the request into a single bash command,
// runs it through the configured shell, and speaks a confirmation. The
// command's output goes to the log, not to speech.
func Bash(ctx context.Context, env *Env, command string) (bool, error) {
	prompt := fmt.Sprintf(`You've been asked to run the following bash COMMAND: '%s'

Based on the COMMAND, respond with the command to run in this JSON format: {"bash_command_to_run": ""}.
Exclude any new lines or code blocks from the command. Respond with exclusively JSON.
Your COMMAND will be immediately run and the output will be returned to the user.`, command)

	var reply bashReply
	if err := env.LLM.CompleteJSON(ctx, env.persona(), prompt, &reply); err != nil {
		return false, err
	}
	if reply.BashCommandToRun == "" {
		return false, fmt.Errorf("bash workflow: model returned no command")
	}

	log.Info("running bash command", "command", reply.BashCommandToRun)

	out, err := exec.CommandContext(ctx, env.shell(), "-c", reply.BashCommandToRun).CombinedOutput()
	if err != nil {
		log.Error("bash command failed", "command", reply.BashCommandToRun, "err", err, "output", string(out))
		return false, fmt.Errorf("bash workflow: run %q: %w", reply.BashCommandToRun, err)
	}
	log.Debug("bash command output", "output", string(out))

	return false, env.feedback(ctx,
		fmt.Sprintf("I've finished running the command '%s'. What's next?", reply.BashCommandToRun))
}
