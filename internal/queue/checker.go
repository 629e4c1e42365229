// Package queue waits for a batch scheduler queue to drain.
package queue

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/utils"
)

var commandContext = exec.CommandContext

// ErrQueueEmpty is returned by a StatusChecker when the scheduler signals an
// empty queue through its exit status rather than its output.
var ErrQueueEmpty = errors.New("queue is empty")

// StatusChecker reports how much work is still queued
type StatusChecker interface {
	Pending(ctx context.Context) (int, error)
}

// StatusFunc adapts a plain function to StatusChecker
type StatusFunc func(ctx context.Context) (int, error)

// Pending calls f(ctx)
func (f StatusFunc) Pending(ctx context.Context) (int, error) {
	return f(ctx)
}

// CommandChecker runs a queue status command such as qstat and counts the
// non-blank lines it prints.
type CommandChecker struct {
	Command       []string
	EmptyExitCode int
}

// NewCommandChecker builds a checker for command. An empty command falls back
// to qstat.
func NewCommandChecker(command []string, emptyExitCode int) *CommandChecker {
	if len(command) == 0 {
		command = []string{utils.DefaultQueueCommand}
	}
	return &CommandChecker{
		Command:       append([]string(nil), command...),
		EmptyExitCode: emptyExitCode,
	}
}

// Pending runs the command once. A process exit equal to EmptyExitCode
// yields ErrQueueEmpty; any other failure is a QUEUE_ERROR.
func (c *CommandChecker) Pending(ctx context.Context) (int, error) {
	cmd := commandContext(ctx, c.Command[0], c.Command[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == c.EmptyExitCode {
				return 0, ErrQueueEmpty
			}
			return 0, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeQueueError,
				fmt.Sprintf("%s exited with status %d", c.Command[0], exitErr.ExitCode())).
				WithContext("command", strings.Join(c.Command, " ")).
				WithContext("exitCode", exitErr.ExitCode()).
				WithContext("stderr", strings.TrimSpace(stderr.String())).
				Build(), err)
		}
		return 0, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeQueueError,
			fmt.Sprintf("run %s: %v", c.Command[0], err)).
			WithContext("command", strings.Join(c.Command, " ")).
			Build(), err)
	}

	return countLines(out), nil
}

func countLines(out []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}
