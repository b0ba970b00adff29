package entities

import "errors"

var (
	// ErrSourceNotFound indicates the FAQ source path does not exist.
	// Loading yields an empty record set rather than a crash.
	ErrSourceNotFound = errors.New("faq source not found")

	// ErrIndexQueryFailed indicates the candidate index was unreachable or
	// returned an incompatible result. Callers degrade, they never crash.
	ErrIndexQueryFailed = errors.New("candidate index query failed")

	// ErrStorageUnavailable indicates an audit or ticket write failed.
	// This is the one condition allowed to surface as a failed request.
	ErrStorageUnavailable = errors.New("durable storage unavailable")

	// ErrAgentEnrichment indicates the best-effort generative layer failed.
	// Always swallowed by the decision engine.
	ErrAgentEnrichment = errors.New("agent enrichment failed")
)
