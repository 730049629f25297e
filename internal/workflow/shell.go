package workflow

import (
	"context"
	"fmt"
)

type shellReply struct {
	CommandToRun string `json:"command_to_run"`
}

// Shell asks the model for a shell command matching the request and places
// it on the clipboard instead of running it, then speaks a confirmation.
func Shell(ctx context.Context, env *Env, command string) (bool, error) {
	prompt := fmt.Sprintf(`Your task is to provide a JSON response with the following format: {"command_to_run": ""} detailing the shell command to run based on this question: %s.

After generating the response, your command will be attached directly to your human companion's clipboard to be run.`, command)

	var reply shellReply
	if err := env.LLM.CompleteJSON(ctx, env.persona(), prompt, &reply); err != nil {
		return false, err
	}
	if reply.CommandToRun == "" {
		return false, fmt.Errorf("shell workflow: model returned no command")
	}

	if err := env.Clipboard.Copy(reply.CommandToRun); err != nil {
		return false, err
	}

	return false, env.feedback(ctx,
		fmt.Sprintf("I've attached the command '%s' to your clipboard. Ready for the next task.", reply.CommandToRun))
}
