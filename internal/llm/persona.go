package llm

import "fmt"

// PersonaHead is the shared system prompt prefix for conversational replies.
// Every workflow that speaks to the user starts its prompt with this so the
// assistant keeps one voice across handlers.
func PersonaHead(assistant, companion string) string {
	return fmt.Sprintf(`You are a friendly, ultra helpful, attentive, concise AI assistant named '%s'.
You work with your human companion '%s' to build valuable experience through software.
We both like short, concise, back-and-forth conversations.`, assistant, companion)
}
