package apply

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog/log"

	"peertech.de/keel/pkg/resource"
)

// Executor performs the real side effect for a single operation. The applier
// calls it strictly in plan order; an implementation must not reorder or
// batch.
type Executor interface {
	// Create brings the resource into existence.
	Create(ctx context.Context, r resource.Resource) error

	// Delete removes the resource.
	Delete(ctx context.Context, r resource.Resource) error
}

// CommandExecutionError represents a hook command that executed but failed.
type CommandExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("command '%s' failed with exit code %d", e.Command, e.ExitCode)
}

func NewCommandExecutor(opts ...CommandOption) *CommandExecutor {
	options := CommandOptions{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &CommandExecutor{options: options}
}

type CommandOption func(co *CommandOptions)

type CommandOptions struct {
	// Timeout for a single hook command (default: 30s)
	Timeout time.Duration
}

func WithCommandTimeout(timeout time.Duration) CommandOption {
	return func(co *CommandOptions) {
		co.Timeout = timeout
	}
}

// CommandExecutor realizes operations by running the create/delete shell
// hooks declared on the resources.
type CommandExecutor struct {
	options CommandOptions
}

func (e *CommandExecutor) Create(ctx context.Context, r resource.Resource) error {
	if r.CreateCmd == "" {
		return fmt.Errorf("resource %q has no create command", r.Name)
	}
	return e.run(ctx, r.Name, r.CreateCmd)
}

func (e *CommandExecutor) Delete(ctx context.Context, r resource.Resource) error {
	if r.DeleteCmd == "" {
		return fmt.Errorf("resource %q has no delete command", r.Name)
	}
	return e.run(ctx, r.Name, r.DeleteCmd)
}

func (e *CommandExecutor) run(ctx context.Context, name, command string) error {
	parts, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("invalid command syntax: %w", err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("empty command")
	}

	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return &CommandExecutionError{
				Command:  command,
				ExitCode: exitError.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("command timed out: %w", err)
		}
		return fmt.Errorf("command execution failed: %w", err)
	}

	log.Debug().
		Str("resource", name).
		Str("command", parts[0]).
		Int("stdout_len", stdout.Len()).
		Int("stderr_len", stderr.Len()).
		Msg("Hook command completed")

	return nil
}
