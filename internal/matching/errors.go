package matching

import "fmt"

// ConfigurationError indicates a weight configuration the ranker cannot use.
// It fails the whole request, unlike a bad candidate record.
type ConfigurationError struct {
	Dimension string
	Message   string
	Cause     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Dimension != "" {
		msg = fmt.Sprintf("%s: %s", e.Dimension, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid weight configuration: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("invalid weight configuration: %s", msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// CandidateError wraps a failure while evaluating a single candidate.
// The ranker logs and counts it, then drops the candidate.
type CandidateError struct {
	CandidateID string
	Cause       error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %q: %v", e.CandidateID, e.Cause)
}

func (e *CandidateError) Unwrap() error {
	return e.Cause
}
