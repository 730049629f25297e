package workflow

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor opens content for the user to edit and returns the result.
type Editor interface {
	Edit(initial string) (string, error)
}

// TempFileEditor writes the initial content to a temp file, runs the editor
// command on it, waits, and reads the file back. The temp file is removed
// on every path.
type TempFileEditor struct {
	// Command is the editor argv; the file path is appended.
	Command []string

	// Dir is where temp files are created. Empty means the OS default.
	Dir string
}

// SystemEditor builds a TempFileEditor from $EDITOR, falling back to vi.
func SystemEditor() TempFileEditor {
	argv := strings.Fields(os.Getenv("EDITOR"))
	if len(argv) == 0 {
		argv = []string{"vi"}
	}
	return TempFileEditor{Command: argv}
}

func (e TempFileEditor) Edit(initial string) (string, error) {
	f, err := os.CreateTemp(e.Dir, "hark-edit-*.json")
	if err != nil {
		return "", fmt.Errorf("editor: temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("editor: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("editor: close %s: %w", path, err)
	}

	cmd := exec.Command(e.Command[0], append(e.Command[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor: %s: %w", e.Command[0], err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("editor: read back %s: %w", path, err)
	}
	return string(edited), nil
}
