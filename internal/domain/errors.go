package domain

import "errors"

// Domain sentinel errors.
var (
	// ErrInvalidRequest signals a request that fails validation (missing
	// required locator, malformed range, unsupported mode).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAmbiguousMode signals a request mixing id-style and name-style locators.
	ErrAmbiguousMode = errors.New("ambiguous request mode")
	// ErrSnapshotUnavailable signals that no projection snapshot has been published yet.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	// ErrRefreshFailed signals a projection rebuild cycle that could not publish.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrRefreshInProgress signals an overlapping force-refresh attempt.
	ErrRefreshInProgress = errors.New("refresh already in progress")
	// ErrAssistantUnavailable signals that no criteria extractor is configured.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	// ErrCriteriaIncomplete signals that the extractor could not produce the
	// required locators from an utterance.
	ErrCriteriaIncomplete = errors.New("criteria incomplete")
)
