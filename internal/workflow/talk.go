package workflow

import "context"

// Question answers a question with a spoken reply, steering toward building
// and product work.
func Question(ctx context.Context, env *Env, command string) (bool, error) {
	prompt := `We don't like small talk so we always steer our conversation back toward creating, building, product development, designing, and coding.
We like to discuss in high level details without getting too technical.
Respond to the following question: ` + command

	reply, err := env.LLM.Complete(ctx, env.persona(), prompt)
	if err != nil {
		return false, err
	}
	return false, env.speak(ctx, reply)
}

// Chat handles greetings and open conversation.
func Chat(ctx context.Context, env *Env, command string) (bool, error) {
	prompt := `We don't like small talk so we always steer our conversation back toward creating, building, product development, designing, and coding.
Respond to the following prompt: ` + command

	reply, err := env.LLM.Complete(ctx, env.persona(), prompt)
	if err != nil {
		return false, err
	}
	return false, env.speak(ctx, reply)
}

// Exit speaks a sign-off and asks the listen loop to terminate. The loop
// stops even when the sign-off cannot be generated or spoken.
func Exit(ctx context.Context, env *Env, command string) (bool, error) {
	prompt := `We're wrapping up our work for the day. You're a great engineering partner.
Respond to your human companion's closing thoughts: ` + command

	reply, err := env.LLM.Complete(ctx, env.persona(), prompt)
	if err != nil {
		return true, err
	}
	return true, env.speak(ctx, reply)
}
