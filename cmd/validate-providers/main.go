package main

import (
	"fmt"
	"os"

	"github.com/moverly/leadgate/provider"
)

/* validate-providers - Standalone CLI tool to validate providers.yaml
 * Usage: go run cmd/validate-providers/main.go [providers.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	// Get providers file path from args or use default
	providersFile := "providers.yaml"
	if len(os.Args) > 1 {
		providersFile = os.Args[1]
	}

	fmt.Printf("Validating providers file: %s\n", providersFile)

	loader := provider.NewLoader()
	if err := loader.Load(providersFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	configs := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d provider(s):\n", len(configs))

	for i, cfg := range configs {
		fmt.Printf("\n%d. Provider: %s\n", i+1, cfg.Provider)
		fmt.Printf("   Signing Secret:   %s\n", cfg.RedactedSecret())
		fmt.Printf("   Signature Field:  %s\n", cfg.SignatureField)
		if cfg.SignatureHeader != "" {
			fmt.Printf("   Signature Header: %s\n", cfg.SignatureHeader)
		}
		if cfg.WebhookURL != "" {
			fmt.Printf("   Webhook URL:      %s\n", cfg.WebhookURL)
		}
	}

	fmt.Printf("\n✓ All providers are valid!\n")
	os.Exit(0)
}
