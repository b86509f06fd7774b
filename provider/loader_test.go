package provider_test

import (
	"os"
	"testing"

	"github.com/moverly/leadgate/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempProviders(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "providers-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid providers file", func(t *testing.T) {
		content := `
providers:
  - name: "movematch"
    signing_secret: "mm-secret-key"
  - name: "quoterush"
    signing_secret: "qr-secret-key"
    signature_field: "sig"
  - name: "leadpoint"
    signing_secret: "lp-secret-key"
    webhook_url: "https://hooks.example.com/leadpoint"
`
		loader := provider.NewLoader()
		err := loader.Load(writeTempProviders(t, content))
		require.NoError(t, err)

		assert.Len(t, loader.List(), 3)

		cfg, err := loader.Get(provider.MoveMatch)
		require.NoError(t, err)
		assert.Equal(t, "mm-secret-key", cfg.SigningSecret)
		assert.Equal(t, "signature", cfg.SignatureField, "defaults when omitted")

		cfg, err = loader.Get(provider.QuoteRush)
		require.NoError(t, err)
		assert.Equal(t, "sig", cfg.SignatureField)

		cfg, err = loader.Get(provider.LeadPoint)
		require.NoError(t, err)
		assert.Equal(t, "X-Leadpoint-Signature", cfg.SignatureHeader, "defaults when omitted")
		assert.Equal(t, "https://hooks.example.com/leadpoint", cfg.WebhookURL)
	})

	t.Run("error - file not found", func(t *testing.T) {
		loader := provider.NewLoader()
		err := loader.Load("nonexistent.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading providers file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		loader := provider.NewLoader()
		err := loader.Load(writeTempProviders(t, `invalid yaml content: [[[`))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing providers YAML")
	})

	t.Run("error - unknown provider name", func(t *testing.T) {
		content := `
providers:
  - name: "somebody-else"
    signing_secret: "secret"
`
		loader := provider.NewLoader()
		err := loader.Load(writeTempProviders(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("error - missing secret", func(t *testing.T) {
		content := `
providers:
  - name: "movematch"
`
		loader := provider.NewLoader()
		err := loader.Load(writeTempProviders(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "signing_secret cannot be empty")
	})

	t.Run("error - leadpoint without webhook_url", func(t *testing.T) {
		content := `
providers:
  - name: "leadpoint"
    signing_secret: "lp-secret"
`
		loader := provider.NewLoader()
		err := loader.Load(writeTempProviders(t, content))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "webhook_url cannot be empty")
	})
}

func TestLoader_Exists(t *testing.T) {
	content := `
providers:
  - name: "movematch"
    signing_secret: "mm-secret-key"
`
	loader := provider.NewLoader()
	err := loader.Load(writeTempProviders(t, content))
	require.NoError(t, err)

	assert.True(t, loader.Exists(provider.MoveMatch))
	assert.False(t, loader.Exists(provider.LeadPoint))
}

func TestProvider_New(t *testing.T) {
	assert.Equal(t, provider.MoveMatch, provider.New("movematch"))
	assert.Equal(t, provider.QuoteRush, provider.New("quoterush"))
	assert.Equal(t, provider.LeadPoint, provider.New("leadpoint"))
	assert.Error(t, provider.New("stripe").Validate())
}

func TestConfig_Redacted(t *testing.T) {
	cfg := provider.Config{
		Provider:       provider.MoveMatch,
		SigningSecret:  "super-secret-signing-key",
		SignatureField: "signature",
	}

	snap := cfg.Redacted()
	assert.Equal(t, "movematch", snap.Provider)
	assert.Equal(t, "supe...", snap.SigningSecret)
	assert.NotContains(t, snap.SigningSecret, "signing-key")
}
