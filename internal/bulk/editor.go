package bulk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor opens a file for interactive editing and returns when the user is
// done with it.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// ExecEditor launches an external editor command with the file path
// appended. The command may carry arguments ("emacsclient -t").
type ExecEditor struct {
	Command string
}

// Edit runs the editor attached to the terminal. A non-zero exit status is
// not treated as failure: several editors exit non-zero on normal quits,
// and the edited file on disk is the source of truth anyway.
func (e ExecEditor) Edit(ctx context.Context, path string) error {
	parts := strings.Fields(e.Command)
	if len(parts) == 0 {
		return fmt.Errorf("empty editor command")
	}

	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
