package verify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/moverly/leadgate/provider"
)

/* movematch delivers a JSON body and signs timestamp ++ token with
 * HMAC-SHA256, hex encoded, signature inside the payload.
 *
 * The upstream system sometimes serializes its payload twice: instead
 * of the JSON object it sends a JSON string containing the object, with
 * every quote escaped. A single decode then yields a string, and a
 * second decode is needed to reach the object. This is normalization
 * only; after it the same HMAC check applies.
 */

func extractMoveMatch(cfg *provider.Config, body []byte, _ http.Header) (extracted, error) {
	payload, err := decodeMoveMatchPayload(body)
	if err != nil {
		return extracted{}, err
	}

	timestamp, err := stringField(payload, "timestamp")
	if err != nil {
		return extracted{}, err
	}
	token, err := stringField(payload, "token")
	if err != nil {
		return extracted{}, err
	}
	received, err := stringField(payload, cfg.SignatureField)
	if err != nil {
		return extracted{}, err
	}

	return extracted{
		signedData: []byte(timestamp + token),
		received:   received,
	}, nil
}

// decodeMoveMatchPayload decodes the body, unwrapping one level of
// double encoding when present. A failed second decode is a malformed
// payload, never a valid one.
func decodeMoveMatchPayload(body []byte) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	if s, ok := raw.(string); ok {
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, fmt.Errorf("decoding double-encoded payload: %w", err)
		}
	}

	payload, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is not a JSON object")
	}
	return payload, nil
}

// stringField reads a payload field as a string, tolerating JSON
// numbers for the timestamp quirk some deliveries exhibit.
func stringField(payload map[string]any, name string) (string, error) {
	v, ok := payload[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("field %q is not a string", name)
	}
}
