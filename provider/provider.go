package provider

import "fmt"

/* Provider identifies a lead source over a closed set.
 * Each provider signs its webhooks differently; the verify package
 * dispatches on this value to pick the extraction and signing scheme.
 */
type Provider int

const (
	MoveMatch Provider = iota + 1
	QuoteRush
	LeadPoint
)

// String returns the string representation of the provider
func (p Provider) String() string {
	switch p {
	case MoveMatch:
		return "movematch"
	case QuoteRush:
		return "quoterush"
	case LeadPoint:
		return "leadpoint"
	default:
		return "unknown"
	}
}

// New creates a Provider from a string. Unrecognized names map to the
// zero value, which never validates.
func New(s string) Provider {
	switch s {
	case "movematch":
		return MoveMatch
	case "quoterush":
		return QuoteRush
	case "leadpoint":
		return LeadPoint
	default:
		return Provider(0)
	}
}

// Validate checks if the provider is a member of the closed set
func (p Provider) Validate() error {
	if p < MoveMatch || p > LeadPoint {
		return fmt.Errorf("unknown provider: %d", p)
	}
	return nil
}
