package model

// AppState stores per-request state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	UserID string
	Query  string

	// AugmentedQuery is Query plus an explicit start-time directive when the
	// datetime extractor found a temporal expression in the raw text.
	AugmentedQuery string
	ExtractedTime  string // ISO-8601, empty when nothing was extracted

	ActionIntent bool // result of the binary intent gate

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// IntentDecision is the parsed output of the intent classifier node.
type IntentDecision struct {
	Action bool   `json:"action"`
	Raw    string `json:"raw"`
}
