package deployment

import (
	"fmt"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusBuilding Status = "building"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// Finished returns true for terminal states. No transition leaves a finished state.
func (s Status) Finished() bool {
	switch s {
	case StatusReady, StatusError:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) StatusEmoji() rune {
	switch s {
	case StatusReady:
		return '✅'
	case StatusError:
		return '❌'
	default:
		return '⏳'
	}
}

// ParseStatus maps a provider state onto a Status.
// Any value the provider reports that is not terminal counts as building.
func ParseStatus(state string) Status {
	switch Status(state) {
	case StatusReady:
		return StatusReady
	case StatusError:
		return StatusError
	case StatusPending:
		return StatusPending
	default:
		return StatusBuilding
	}
}

func (s *Status) UnmarshalText(text []byte) error {
	switch Status(text) {
	case StatusPending, StatusBuilding, StatusReady, StatusError:
		*s = Status(text)
		return nil
	}
	return fmt.Errorf("unknown deployment status %q", string(text))
}
