package provider

import (
	"fmt"
)

// secretPrefixLen is how much of a signing secret survives redaction.
// Enough to correlate a record with the configured secret, never enough
// to recompute a signature.
const secretPrefixLen = 4

/* Config holds the verification settings for a single provider.
 * SigningSecret is shared with the provider out of band and must never
 * appear in full in logs or persisted snapshots.
 */
type Config struct {
	Provider      Provider
	SigningSecret string
	// SignatureField names the payload/form field carrying the signature
	// (movematch, quoterush).
	SignatureField string
	// SignatureHeader names the HTTP header carrying the signature
	// (leadpoint).
	SignatureHeader string
	// WebhookURL is the registered callback URL, part of leadpoint's
	// signed data.
	WebhookURL string
}

// Validate checks if the provider configuration is usable
func (c *Config) Validate() error {
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if c.SigningSecret == "" {
		return fmt.Errorf("signing_secret cannot be empty for provider %s", c.Provider)
	}
	switch c.Provider {
	case MoveMatch, QuoteRush:
		if c.SignatureField == "" {
			return fmt.Errorf("signature_field cannot be empty for provider %s", c.Provider)
		}
	case LeadPoint:
		if c.SignatureHeader == "" {
			return fmt.Errorf("signature_header cannot be empty for provider %s", c.Provider)
		}
		if c.WebhookURL == "" {
			return fmt.Errorf("webhook_url cannot be empty for provider %s", c.Provider)
		}
	}
	return nil
}

// RedactedSecret returns a short prefix of the signing secret for
// correlation in logs and failure records.
func (c *Config) RedactedSecret() string {
	if len(c.SigningSecret) <= secretPrefixLen {
		return c.SigningSecret
	}
	return c.SigningSecret[:secretPrefixLen] + "..."
}

// Snapshot returns a copy of the configuration safe to serialize:
// identical to the original except for the redacted secret.
type Snapshot struct {
	Provider        string `json:"provider"`
	SigningSecret   string `json:"signing_secret"`
	SignatureField  string `json:"signature_field,omitempty"`
	SignatureHeader string `json:"signature_header,omitempty"`
	WebhookURL      string `json:"webhook_url,omitempty"`
}

// Redacted builds the serializable snapshot with the secret truncated
func (c *Config) Redacted() Snapshot {
	return Snapshot{
		Provider:        c.Provider.String(),
		SigningSecret:   c.RedactedSecret(),
		SignatureField:  c.SignatureField,
		SignatureHeader: c.SignatureHeader,
		WebhookURL:      c.WebhookURL,
	}
}
