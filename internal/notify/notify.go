// Package notify delivers desktop notifications.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Notifier is the fire-and-forget notification sink. Callers swallow errors;
// a failed delivery never interrupts a scheduling loop.
type Notifier interface {
	Notify(ctx context.Context, title, message string, timeout time.Duration) error
}

// CommandNotifier shells out to a notify-send style command.
type CommandNotifier struct {
	command string
}

// NewCommandNotifier creates a notifier using the given command
// (typically "notify-send").
func NewCommandNotifier(command string) *CommandNotifier {
	if command == "" {
		command = "notify-send"
	}
	return &CommandNotifier{command: command}
}

// Notify delivers one notification. timeout is the on-screen display time.
func (n *CommandNotifier) Notify(ctx context.Context, title, message string, timeout time.Duration) error {
	args := []string{title, message}
	if timeout > 0 {
		args = append([]string{"-t", fmt.Sprintf("%d", timeout.Milliseconds())}, args...)
	}

	if err := exec.CommandContext(ctx, n.command, args...).Run(); err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	return nil
}

// NopNotifier discards notifications. Used when delivery is disabled.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(ctx context.Context, title, message string, timeout time.Duration) error {
	return nil
}
