// Package router maps spoken command text onto workflow handlers by keyword
// spotting. The table is an ordered list of keyword groups; the first group
// with any keyword occurring in the lowercased transcript wins, so declaration
// order is the tie-break when a transcript mentions several groups.
package router

import "strings"

// ID names a workflow handler. The router only resolves IDs; the workflow
// package owns what each one does.
type ID string

const (
	Configure   ID = "configure"
	ExampleCode ID = "example-code"
	Bash        ID = "bash"
	Shell       ID = "shell"
	Question    ID = "question"
	Chat        ID = "chat"
	Exit        ID = "exit"
)

// Binding ties a group of alternative keywords to one handler.
type Binding struct {
	Keywords []string
	Handler  ID
}

// Table is an ordered set of bindings. Order matters: Route scans the
// bindings front to back.
type Table []Binding

// Default returns the built-in command table. Keywords are matched by
// substring containment, not whole words, so "hi" inside "history" matches
// the chat group. That looseness is deliberate and pinned by tests.
func Default() Table {
	return Table{
		{Keywords: []string{"configure", "configuration"}, Handler: Configure},
		{Keywords: []string{"example code"}, Handler: ExampleCode},
		{Keywords: []string{"bash", "browser"}, Handler: Bash},
		{Keywords: []string{"shell"}, Handler: Shell},
		{Keywords: []string{"hello", "hey", "hi"}, Handler: Chat},
		{Keywords: []string{"question"}, Handler: Question},
		{Keywords: []string{"exit"}, Handler: Exit},
	}
}

// Route resolves transcript to the handler of the first binding containing a
// matching keyword. It reports false when no keyword occurs. Route is a pure
// function of the transcript and the table.
func (t Table) Route(transcript string) (ID, bool) {
	lowered := strings.ToLower(transcript)
	for _, b := range t {
		for _, kw := range b.Keywords {
			if strings.Contains(lowered, kw) {
				return b.Handler, true
			}
		}
	}
	return "", false
}

// TextAfterKeyword returns the transcript text following the first
// case-insensitive occurrence of keyword, with surrounding space trimmed.
// It returns "" when the keyword does not occur.
func TextAfterKeyword(transcript, keyword string) string {
	if keyword == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(transcript), strings.ToLower(keyword))
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(transcript[idx+len(keyword):])
}
