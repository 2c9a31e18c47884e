package insights

import "fmt"

// APICallError represents a failure calling the analysis model.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError reports an analyzer response that could not be decoded as the
// expected schema. RawResponse carries the offending payload for diagnosis;
// it ends up in the processing job's error message, never swallowed.
type ParseError struct {
	Message     string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	raw := e.RawResponse
	if len(raw) > 512 {
		raw = raw[:512] + "..."
	}
	if e.Cause != nil {
		return fmt.Sprintf("insight parse error: %s: %v (raw response: %s)", e.Message, e.Cause, raw)
	}
	return fmt.Sprintf("insight parse error: %s (raw response: %s)", e.Message, raw)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
