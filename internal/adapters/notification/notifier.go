// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"path"

	"github.com/gen2brain/beeep"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg  *config.NotificationConfig
	send func(title, message string) error
	beep func() error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}

	if err := n.send(title, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if n.cfg.Sound {
		return n.beep()
	}
	return nil
}

// NotifyTransition displays a notification describing t.
func (n *Notifier) NotifyTransition(t domain.Transition) error {
	title, message := describe(t)
	return n.Notify(title, message)
}

func describe(t domain.Transition) (title, message string) {
	name := path.Base(t.Path)
	switch t.Kind {
	case domain.TransitionLockedByOther:
		return "🔒 File locked", fmt.Sprintf("%s was locked by %s.", name, t.Owner)
	case domain.TransitionOutdated:
		return "⇣ Newer version available", fmt.Sprintf("%s changed on the remote. Pull before editing.", name)
	case domain.TransitionConflicted:
		return "⚡ Merge conflict", fmt.Sprintf("%s has conflicts to resolve.", name)
	default:
		return "gitstate", fmt.Sprintf("%s changed state.", name)
	}
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
