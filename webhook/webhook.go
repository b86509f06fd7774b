package webhook

import (
	"net/http"
	"time"

	"github.com/moverly/leadgate/provider"
)

/* Delivery represents a single inbound webhook delivery
 * Uses value semantics as it represents data, not behavior
 */
type Delivery struct {
	ID         string
	Provider   provider.Provider
	Method     string
	URL        string
	RemoteAddr string
	Headers    map[string]string
	Body       []byte
	ReceivedAt time.Time
}

// HTTPHeader rebuilds an http.Header from the captured header map so
// verification can do canonical, case-insensitive lookups.
func (d Delivery) HTTPHeader() http.Header {
	h := make(http.Header, len(d.Headers))
	for k, v := range d.Headers {
		h.Set(k, v)
	}
	return h
}

// RequestSnapshot is the serializable form of a delivery, persisted
// with failed webhooks for diagnosis and manual replay.
type RequestSnapshot struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	RemoteAddr string            `json:"remote_addr"`
	ReceivedAt time.Time         `json:"received_at"`
}

// Snapshot builds the serializable snapshot of the delivery
func (d Delivery) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		Method:     d.Method,
		URL:        d.URL,
		Headers:    d.Headers,
		Body:       string(d.Body),
		RemoteAddr: d.RemoteAddr,
		ReceivedAt: d.ReceivedAt,
	}
}

/* Job is the unit of work handed to the asynchronous processor once a
 * delivery has passed signature verification. Verification is never
 * retried; redelivery of the job is governed by the queue.
 */
type Job struct {
	CallID   string            `json:"call_id"`
	Provider provider.Provider `json:"provider"`
	Delivery Delivery          `json:"delivery"`
}
