package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier writes notifications to stdout with ANSI formatting.
// Honors the notifications toggle in settings: when off, messages are
// dropped silently.
type CLINotifier struct {
	settings domain.SettingsStore
	log      *logger.Logger
	printFn  PrintFunc
}

// NewCLINotifier creates a stdout-based notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(settings domain.SettingsStore, log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{settings: settings, log: log, printFn: printFn}
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	if n.muted(ctx) {
		n.log.Debug("notify (muted): %s", message)
		return nil
	}
	n.log.Debug("notify: %s", message)
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	if n.muted(ctx) {
		n.log.Debug("notify-urgent (muted): %s", message)
		return nil
	}
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}

func (n *CLINotifier) muted(ctx context.Context) bool {
	set, err := n.settings.Load(ctx)
	if err != nil {
		return false
	}
	return !set.EnableNotifications
}
