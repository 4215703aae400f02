package models

// EnrichRequest is the optional filter body of POST /api/commands/enrich.
// It is stored verbatim on the job row for audit, so the snapshot a poller
// sees carries the exact parameters the job was started with.
type EnrichRequest struct {
	// Prefix restricts the work list to cmdlets whose name starts with the
	// given prefix (case-insensitive), e.g. "Get-".
	Prefix string `json:"prefix,omitempty"`
	// Names restricts the work list to the given cmdlet names.
	Names []string `json:"names,omitempty"`
	// Force re-enriches cmdlets that already have a fresh card.
	Force bool `json:"force,omitempty"`
	// Stale restricts the work list to cmdlets whose card is missing or
	// older than the configured stale window. Used by the nightly sweep.
	Stale bool `json:"stale,omitempty"`
}

// StartJobResponse is the body of POST /api/commands/enrich (202 and 409).
type StartJobResponse struct {
	JobID          string `json:"jobId"`
	Status         string `json:"status"`
	AlreadyRunning bool   `json:"alreadyRunning"`
}

// CancelJobResponse is the body of POST /api/commands/enrich/:jobId/cancel.
// Cancellation is a request, not a guarantee, so Status may still be
// non-terminal here.
type CancelJobResponse struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	CancelRequested bool   `json:"cancelRequested"`
}

// RegisterCmdletRequest is the body of POST /api/commands: the script
// importer registers a command it has seen in use so the next enrichment
// sweep picks it up.
type RegisterCmdletRequest struct {
	Name   string `json:"name"`
	Module string `json:"module,omitempty"`
}

// ErrorResponse is the standard error body, matching the legacy Node API shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CmdletListEntry is one row of GET /api/commands: an inventory entry joined
// with its enrichment state.
type CmdletListEntry struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Module     string  `json:"module"`
	Enriched   bool    `json:"enriched"`
	EnrichedAt *string `json:"enrichedAt"`
}

// PaginatedResponse wraps list results with pagination info.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}
