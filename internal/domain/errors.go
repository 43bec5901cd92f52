package domain

import "errors"

var (
	// ErrConfiguration means a required setting or credential is missing.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication means a catalog rejected or could not issue credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrTransientAPI covers network failures and non-success catalog responses.
	ErrTransientAPI = errors.New("catalog API request failed")
	// ErrNotFound means a requested playlist does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBatchRejected means the target catalog did not apply a track batch.
	ErrBatchRejected = errors.New("track batch rejected")
	// ErrInvalidPlaylistURL means a playlist link could not be parsed.
	ErrInvalidPlaylistURL = errors.New("invalid playlist URL")
)
