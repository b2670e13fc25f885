package service

import (
	"context"
	"time"
)

// Result is the outcome of a successful service call. Failures are returned
// as errors from the internal/errors taxonomy.
type Result struct {
	HTTPStatus int
	Message    string
	Token      string
	Data       interface{}
}

// Options tunes service behaviour.
type Options struct {
	// ResetURLBase is the page the emailed reset token is appended to.
	ResetURLBase string
	// HideUnknownResetEmail answers reset requests for unknown emails with
	// the same success response as for known ones.
	HideUnknownResetEmail bool
	// RepositoryTimeout bounds each repository call. Zero disables it.
	RepositoryTimeout time.Duration
	// NotificationTimeout bounds each email send. Zero disables it.
	NotificationTimeout time.Duration
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
