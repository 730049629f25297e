package llm

import (
	"regexp"
	"strings"
)

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON strips a markdown ```json code fence from a model reply,
// returning the fenced body. Replies without a fence are returned trimmed
// as-is; whether the result is valid JSON is the caller's problem.
func ExtractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	if m := jsonFenceRe.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return reply
}
