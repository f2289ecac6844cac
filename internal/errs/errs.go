// Package errs defines the closed set of sentinel error kinds shared
// across the production-orchestration components, so callers can
// dispatch on error kind with errors.Is rather than string matching.
package errs

import "errors"

var (
	// ErrInvalidInput marks a malformed concept, non-positive budget,
	// or empty pilot list.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAgentResponse marks an LLM response that could not be
	// parsed into the expected schema after retries.
	ErrInvalidAgentResponse = errors.New("invalid agent response")

	// ErrProviderFailure marks a non-retryable permanent provider
	// failure: auth, invalid request, unsupported tier.
	ErrProviderFailure = errors.New("provider failure")

	// ErrValidation marks an Execution Graph with cycles, duplicate
	// scene IDs, or dangling references. Validation errors are
	// collected into a list by callers, never thrown as a single
	// failure.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup (asset, run, pilot) that found no
	// matching record.
	ErrNotFound = errors.New("not found")
)

// BudgetExceeded is not an error kind returned through the error
// channel — it is an observable result, read from the spend and
// remaining amounts the result types carry (PilotRunResult.BudgetSpent,
// a negative ProductionResult.BudgetRemaining). QAFailure is
// the same: it surfaces via QAResult.Passed = false, never as an
// error value.
