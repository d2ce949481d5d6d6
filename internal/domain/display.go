package domain

import (
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/locale"
)

// MessageID is a stable identifier of a translatable message.
type MessageID string

const (
	MsgNone              MessageID = ""
	MsgLocked            MessageID = "state.locked"
	MsgLockedTooltip     MessageID = "state.locked.tooltip"
	MsgLockedOther       MessageID = "state.locked_other"
	MsgLockedOtherTip    MessageID = "state.locked_other.tooltip"
	MsgNotCurrent        MessageID = "state.not_current"
	MsgNotCurrentTooltip MessageID = "state.not_current.tooltip"
)

// Message is a message identifier plus its interpolation arguments.
type Message struct {
	ID   MessageID
	Args []any
}

// IsEmpty reports whether the message carries no identifier.
func (m Message) IsEmpty() bool {
	return m.ID == MsgNone
}

// Localize renders the message in the given language.
func (m Message) Localize(tag language.Tag) string {
	return locale.Render(tag, string(m.ID), m.Args...)
}

// String renders the message in the default language.
func (m Message) String() string {
	return m.Localize(locale.Default)
}

type messagePair struct {
	name    MessageID
	tooltip MessageID
}

var statusMessages = map[WorkingCopyStatus]messagePair{
	StatusUnknown:       {"state.unknown", "state.unknown.tooltip"},
	StatusUnchanged:     {"state.unchanged", "state.unchanged.tooltip"},
	StatusAdded:         {"state.added", "state.added.tooltip"},
	StatusDeleted:       {"state.deleted", "state.deleted.tooltip"},
	StatusModified:      {"state.modified", "state.modified.tooltip"},
	StatusRenamed:       {"state.renamed", "state.renamed.tooltip"},
	StatusCopied:        {"state.copied", "state.copied.tooltip"},
	StatusConflicted:    {"state.conflicted", "state.conflicted.tooltip"},
	StatusIgnored:       {"state.ignored", "state.ignored.tooltip"},
	StatusNotControlled: {"state.not_controlled", "state.not_controlled.tooltip"},
	StatusMissing:       {"state.missing", "state.missing.tooltip"},
}

// DisplayName returns the short description of the state.
// Lock ownership wins over currency, which wins over the working-copy status.
func (f *FileState) DisplayName() Message {
	switch {
	case f.Lock == LockedSelf:
		return Message{ID: MsgLocked}
	case f.Lock == LockedOther:
		return Message{ID: MsgLockedOther, Args: []any{f.LockOwner}}
	case !f.IsCurrent():
		return Message{ID: MsgNotCurrent}
	}
	pair, ok := statusMessages[f.WorkingCopy]
	if !ok {
		return Message{}
	}
	return Message{ID: pair.name}
}

// DisplayTooltip returns the long description of the state, with the same
// precedence as DisplayName.
func (f *FileState) DisplayTooltip() Message {
	switch {
	case f.Lock == LockedSelf:
		return Message{ID: MsgLockedTooltip}
	case f.Lock == LockedOther:
		return Message{ID: MsgLockedOtherTip, Args: []any{f.LockOwner}}
	case !f.IsCurrent():
		return Message{ID: MsgNotCurrentTooltip}
	}
	pair, ok := statusMessages[f.WorkingCopy]
	if !ok {
		return Message{}
	}
	return Message{ID: pair.tooltip}
}
