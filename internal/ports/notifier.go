package ports

import "github.com/xvierd/gitstate/internal/domain"

// Notifier tells the user about notable state changes.
// This is a driven port (implemented by adapters).
type Notifier interface {
	// NotifyTransition reports one state change.
	NotifyTransition(t domain.Transition) error
}
