package verify

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/moverly/leadgate/provider"
)

/* quoterush delivers a form-url-encoded body and signs timestamp ++
 * token with HMAC-SHA256, hex encoded, signature inside the form.
 */

func extractQuoteRush(cfg *provider.Config, body []byte, _ http.Header) (extracted, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return extracted{}, fmt.Errorf("parsing form body: %w", err)
	}

	timestamp := values.Get("timestamp")
	if timestamp == "" {
		return extracted{}, fmt.Errorf("missing field %q", "timestamp")
	}
	token := values.Get("token")
	if token == "" {
		return extracted{}, fmt.Errorf("missing field %q", "token")
	}

	return extracted{
		signedData: []byte(timestamp + token),
		received:   values.Get(cfg.SignatureField),
	}, nil
}
