// ABOUTME: Feed status values stored in the dashboard frontmatter
// ABOUTME: Four icon coded states: OK, suspended, resumed-pending and error with a message

package vault

import "strings"

// State is the polling state of a feed.
type State int

const (
	StateOK State = iota
	StateSuspended
	StateResumed
	StateError
)

// Status icons as written to frontmatter.
const (
	IconOK        = "✅"
	IconSuspended = "⏸️"
	IconResumed   = "▶️"
	IconError     = "❌"
)

// Status is a State plus the error message for StateError.
type Status struct {
	State   State
	Message string
}

// OK, Suspended and Resumed are the message-less statuses.
var (
	OK        = Status{State: StateOK}
	Suspended = Status{State: StateSuspended}
	Resumed   = Status{State: StateResumed}
)

// ErrorStatus returns an error status carrying msg.
func ErrorStatus(msg string) Status {
	return Status{State: StateError, Message: strings.Join(strings.Fields(msg), " ")}
}

// ParseStatus decodes a frontmatter status. Empty or unrecognized values
// are treated as resumed-pending so the feed gets polled.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	switch {
	case s == IconOK:
		return OK
	case s == IconSuspended:
		return Suspended
	case strings.HasPrefix(s, IconError):
		return ErrorStatus(strings.TrimPrefix(s, IconError))
	default:
		return Resumed
	}
}

// String encodes the status for frontmatter.
func (s Status) String() string {
	switch s.State {
	case StateOK:
		return IconOK
	case StateSuspended:
		return IconSuspended
	case StateError:
		if s.Message == "" {
			return IconError
		}
		return IconError + " " + s.Message
	default:
		return IconResumed
	}
}

// Polled reports whether feeds in this status are polled.
func (s Status) Polled() bool {
	return s.State != StateSuspended
}
