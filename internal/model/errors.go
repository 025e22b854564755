package model

import "errors"

// Error kinds for the generation workflow. Callers classify failures with
// errors.Is; the concrete message carries the detail.
var (
	// ErrInvalidSource means the URL is not a Wikipedia article URL.
	// Detected before any network call; never worth retrying.
	ErrInvalidSource = errors.New("invalid source URL")

	// ErrNotFound means the source fetch returned a definitive 404.
	ErrNotFound = errors.New("article not found")

	// ErrAccessDenied means the source fetch was blocked (403).
	ErrAccessDenied = errors.New("access denied")

	// ErrTransient covers timeouts, connection failures and other
	// transport faults. Safe to retry.
	ErrTransient = errors.New("transient network error")

	// ErrExtraction means the fetched page lacks a recoverable title or
	// body. A content problem, not a transient one.
	ErrExtraction = errors.New("extraction failed")

	// ErrParse means the model output could not be coerced into valid
	// structure after all repair steps.
	ErrParse = errors.New("unparseable model output")

	// ErrValidation means the output parsed but was semantically unusable
	// (for example, zero questions survived repair).
	ErrValidation = errors.New("invalid quiz output")

	// ErrStore is a read or write failure at the persistence boundary.
	ErrStore = errors.New("store error")
)
