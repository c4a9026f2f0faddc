package motion

import "errors"

// Kind classifies a pipeline failure for the caller. Kinds are assigned
// where the failure originates and never reinterpreted upstream.
type Kind string

const (
	// KindInvalidRequest: the caller can fix the input (empty topic,
	// unknown statistic key, unknown municipality). Raised before any
	// network call.
	KindInvalidRequest Kind = "invalid_request"
	// KindUpstreamUnavailable: statistics service unreachable or every
	// requested series missing.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindGenerationRejected: the AI backend refused the request.
	// Retrying does not help; fix input or credentials.
	KindGenerationRejected Kind = "generation_rejected"
	// KindGenerationUnavailable: retries against the AI backend were
	// exhausted; the caller may retry later.
	KindGenerationUnavailable Kind = "generation_unavailable"
)

// Step names the pipeline state a failure occurred in.
type Step string

const (
	StepValidating         Step = "validating"
	StepFetchingStatistics Step = "fetching_statistics"
	StepPrompting          Step = "prompting"
	StepGenerating         Step = "generating"
	StepFormatting         Step = "formatting"
)

// Error is the single terminal error for a failed request: the
// originating kind, the step it failed in, and a human-readable message.
type Error struct {
	Kind    Kind
	Step    Step
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return string(e.Kind) + " (" + string(e.Step) + "): " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, step Step, message string, err error) *Error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &Error{Kind: kind, Step: step, Message: message, Err: err}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
