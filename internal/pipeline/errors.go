package pipeline

import "fmt"

// ErrorKind classifies extraction failures so callers can react
// without matching on error strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAcquisitionFailure
	KindAcquisitionTimeout
	KindNoHeaderDetected
	KindNoDelimiterMatch
	KindUnparsableGrade
	KindMissingColumnMapping
	KindNoRecordsExtracted
)

// String returns a stable machine-readable label.
func (k ErrorKind) String() string {
	switch k {
	case KindAcquisitionFailure:
		return "acquisition_failure"
	case KindAcquisitionTimeout:
		return "acquisition_timeout"
	case KindNoHeaderDetected:
		return "no_header_detected"
	case KindNoDelimiterMatch:
		return "no_delimiter_match"
	case KindUnparsableGrade:
		return "unparsable_grade"
	case KindMissingColumnMapping:
		return "missing_column_mapping"
	case KindNoRecordsExtracted:
		return "no_records_extracted"
	default:
		return "unknown"
	}
}

// MarshalText serializes the kind as its label.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind label.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	label := string(text)
	for kind := KindUnknown; kind <= KindNoRecordsExtracted; kind++ {
		if kind.String() == label {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", label)
}

// ExtractError describes why a document degraded instead of producing
// a full dataset. It wraps the underlying cause when one exists.
type ExtractError struct {
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
	Err    error     `json:"-"`
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ExtractError) Unwrap() error { return e.Err }

func newExtractError(kind ErrorKind, reason string, err error) *ExtractError {
	return &ExtractError{Kind: kind, Reason: reason, Err: err}
}
