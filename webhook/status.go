package webhook

import "fmt"

/* Status represents the lifecycle of a failed webhook record
 * Follows the lifecycle: Pending -> Retried/Resolved
 * Records are created Pending and only mutated by manual replay tooling
 */
type Status int

const (
	Pending Status = iota + 1
	Retried
	Resolved
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Retried:
		return "retried"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "pending":
		return Pending
	case "retried":
		return Retried
	case "resolved":
		return Resolved
	default:
		return Pending
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Resolved {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}
