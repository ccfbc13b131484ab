package executor

import (
	"errors"
	"net"
	"net/http"

	"github.com/slack-go/slack"
)

var (
	// ErrUserNotFound means the user id could not be resolved to a direct message channel
	ErrUserNotFound = errors.New("user not found")
	// ErrChannelNotFound means no visible channel carries the requested name
	ErrChannelNotFound = errors.New("channel not found")
)

// Slack error codes worth another attempt
var transientSlackErrors = map[string]bool{
	"ratelimited":         true,
	"rate_limited":        true,
	"internal_error":      true,
	"fatal_error":         true,
	"service_unavailable": true,
	"request_timeout":     true,
}

// Slack error codes meaning the user cannot be reached by direct message
var unknownUserSlackErrors = map[string]bool{
	"user_not_found":   true,
	"users_not_found":  true,
	"user_not_visible": true,
	"user_disabled":    true,
	"cannot_dm_bot":    true,
}

func isUnknownUser(err error) bool {
	return unknownUserSlackErrors[slackErrorCode(err)]
}

// IsResolution reports whether err means the target of an action does not exist.
// These errors never succeed on retry.
func IsResolution(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrChannelNotFound)
}

// IsTransient reports whether err is a rate limit, server side or network failure
func IsTransient(err error) bool {
	if err == nil || IsResolution(err) {
		return false
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}

	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return transientSlackErrors[apiErr.Err]
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// slackErrorCode extracts the Slack API error code from err, if any
func slackErrorCode(err error) string {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.Err
	}
	return ""
}
