package domain

import "errors"

// Sentinel errors for photo search operations
var (
	// ErrServerOffline indicates the search API is unreachable
	ErrServerOffline = errors.New("photo search service is unreachable")

	// ErrAuthFailed indicates the access key was rejected
	ErrAuthFailed = errors.New("access key is invalid")

	// ErrRateLimited indicates the hourly request quota is exhausted
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrMalformedResponse indicates the API returned an unexpected payload
	ErrMalformedResponse = errors.New("malformed search response")

	// ErrEmptyQuery indicates a search was requested without any text
	ErrEmptyQuery = errors.New("search query is empty")
)
