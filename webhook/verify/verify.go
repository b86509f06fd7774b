package verify

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/moverly/leadgate/provider"
)

/* verify recomputes each provider's webhook signature and compares it
 * against the received value in constant time.
 *
 * Every provider is a scheme: an extraction function that pulls the
 * signed data and the received signature out of the request, and a
 * signing function that turns the signed data into the expected
 * signature string. New providers are added by registering a scheme,
 * not by editing a shared branch.
 *
 * All failure modes fail closed: a payload that cannot be parsed is
 * never treated as validly signed.
 */

// Outcome classifies the result of verifying a delivery
type Outcome int

const (
	Valid Outcome = iota + 1
	InvalidSignature
	MalformedPayload
	UnknownProvider
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case InvalidSignature:
		return "invalid_signature"
	case MalformedPayload:
		return "malformed_payload"
	case UnknownProvider:
		return "unknown_provider"
	default:
		return "unknown"
	}
}

/* Result distinguishes "the signature did not match" from "the payload
 * could not be parsed" so logs and callers can tell them apart
 */
type Result struct {
	Outcome Outcome
	// Err carries parse detail for MalformedPayload and UnknownProvider
	Err error
}

// Valid reports whether the delivery carried a matching signature
func (r Result) Valid() bool {
	return r.Outcome == Valid
}

func invalid() Result {
	return Result{Outcome: InvalidSignature}
}

func malformed(err error) Result {
	return Result{Outcome: MalformedPayload, Err: err}
}

/* extracted is what a scheme's extraction function pulls from a request:
 * the bytes the provider signed and the signature it sent
 */
type extracted struct {
	signedData []byte
	received   string
}

type scheme struct {
	extract func(cfg *provider.Config, body []byte, header http.Header) (extracted, error)
	sign    func(secret string, signedData []byte) string
}

var schemes = map[provider.Provider]scheme{
	provider.MoveMatch: {extract: extractMoveMatch, sign: signSHA256Hex},
	provider.QuoteRush: {extract: extractQuoteRush, sign: signSHA256Hex},
	provider.LeadPoint: {extract: extractLeadPoint, sign: signSHA1Base64},
}

// Verify checks the delivery's signature against the provider's scheme.
// body is the raw request body; header carries the request headers for
// schemes that transmit the signature out of band.
func Verify(cfg *provider.Config, body []byte, header http.Header) Result {
	s, ok := schemes[cfg.Provider]
	if !ok {
		return Result{
			Outcome: UnknownProvider,
			Err:     fmt.Errorf("no verification scheme for provider %q", cfg.Provider),
		}
	}

	ext, err := s.extract(cfg, body, header)
	if err != nil {
		return malformed(err)
	}
	if ext.received == "" {
		return malformed(fmt.Errorf("missing signature for provider %s", cfg.Provider))
	}

	expected := s.sign(cfg.SigningSecret, ext.signedData)
	if !hmac.Equal([]byte(expected), []byte(ext.received)) {
		return invalid()
	}
	return Result{Outcome: Valid}
}

// signSHA256Hex is HMAC-SHA256 with hexadecimal encoding
func signSHA256Hex(secret string, signedData []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(signedData)
	return hex.EncodeToString(mac.Sum(nil))
}

// signSHA1Base64 is HMAC-SHA1 with standard base64 encoding
func signSHA1Base64(secret string, signedData []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(signedData)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
