package verify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/moverly/leadgate/provider"
)

/* leadpoint delivers form fields plus a JSON-encoded lead_data map and
 * signs, with HMAC-SHA1 base64 encoded in a request header:
 *
 *   webhook URL ++ lead_id ++ lead_code ++ lead_type_id ++
 *   each lead_data value in ascending key order
 *
 * The provider builds its own signature over lead_data sorted by key,
 * so the sort here is load-bearing: any other order invalidates every
 * signature. A value may be a scalar, a non-empty array (only the first
 * element counts) or empty (array or string, both contribute "").
 */

func extractLeadPoint(cfg *provider.Config, body []byte, header http.Header) (extracted, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return extracted{}, fmt.Errorf("parsing form body: %w", err)
	}

	leadID := values.Get("lead_id")
	if leadID == "" {
		return extracted{}, fmt.Errorf("missing field %q", "lead_id")
	}
	leadCode := values.Get("lead_code")
	leadTypeID := values.Get("lead_type_id")

	leadData, err := parseLeadData(values.Get("lead_data"))
	if err != nil {
		return extracted{}, err
	}

	var sb strings.Builder
	sb.WriteString(cfg.WebhookURL)
	sb.WriteString(leadID)
	sb.WriteString(leadCode)
	sb.WriteString(leadTypeID)

	keys := make([]string, 0, len(leadData))
	for k := range leadData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(leadDataValue(leadData[k]))
	}

	return extracted{
		signedData: []byte(sb.String()),
		received:   header.Get(cfg.SignatureHeader),
	}, nil
}

func parseLeadData(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var leadData map[string]any
	if err := json.Unmarshal([]byte(raw), &leadData); err != nil {
		return nil, fmt.Errorf("decoding lead_data: %w", err)
	}
	return leadData, nil
}

// leadDataValue renders one lead_data entry as the provider does when
// signing: scalars verbatim, arrays contribute their first element,
// empty arrays and empty strings contribute the empty string.
func leadDataValue(v any) string {
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return ""
		}
		return scalarString(val[0])
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
