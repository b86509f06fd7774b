package webhook

import "github.com/stretchr/testify/mock"

// MatchFailedWebhook creates a custom matcher for failure-record
// arguments in mocks
func MatchFailedWebhook(matcher func(FailedWebhook) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchJob creates a custom matcher for job arguments in mocks
func MatchJob(matcher func(Job) bool) interface{} {
	return mock.MatchedBy(matcher)
}
