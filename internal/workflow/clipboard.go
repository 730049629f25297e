package workflow

import (
	"fmt"
	"os/exec"
	"strings"
)

// Clipboard reads from and writes to the system clipboard.
type Clipboard interface {
	Copy(text string) error
	Paste() (string, error)
}

type execClipboard struct {
	copyCmd  []string
	pasteCmd []string
}

var clipboardTools = []execClipboard{
	{copyCmd: []string{"wl-copy"}, pasteCmd: []string{"wl-paste", "--no-newline"}},
	{copyCmd: []string{"xclip", "-selection", "clipboard"}, pasteCmd: []string{"xclip", "-selection", "clipboard", "-o"}},
	{copyCmd: []string{"pbcopy"}, pasteCmd: []string{"pbpaste"}},
}

// SystemClipboard probes for a clipboard tool (wl-copy, xclip, pbcopy in
// that order) and returns a Clipboard backed by the first one found.
func SystemClipboard() (Clipboard, error) {
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool.copyCmd[0]); err == nil {
			return tool, nil
		}
	}
	return nil, fmt.Errorf("clipboard: no tool found (tried wl-copy, xclip, pbcopy)")
}

func (c execClipboard) Copy(text string) error {
	cmd := exec.Command(c.copyCmd[0], c.copyCmd[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %s: %w", c.copyCmd[0], err)
	}
	return nil
}

func (c execClipboard) Paste() (string, error) {
	out, err := exec.Command(c.pasteCmd[0], c.pasteCmd[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("clipboard: %s: %w", c.pasteCmd[0], err)
	}
	return string(out), nil
}
