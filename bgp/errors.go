package bgp

import "fmt"

// ErrorKind discriminates the shared failure taxonomy every codec
// operation returns through (spec §4.8 / §7): decode failures are
// recoverable at the message boundary except for ErrorMarkerMismatch,
// ErrorUnsupportedVersion, and a declared length over the standard
// maximum, which are fatal to the stream.
type ErrorKind int

const (
	ErrorInsufficientBuffer ErrorKind = iota
	ErrorTooMuchData
	ErrorMarkerMismatch
	ErrorUnsupportedVersion
	ErrorMalformedField
	ErrorUnknownAttribute
	ErrorStatic
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorInsufficientBuffer:
		return "InsufficientBuffer"
	case ErrorTooMuchData:
		return "TooMuchData"
	case ErrorMarkerMismatch:
		return "MarkerMismatch"
	case ErrorUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrorMalformedField:
		return "MalformedField"
	case ErrorUnknownAttribute:
		return "UnknownAttribute"
	default:
		return "StaticError"
	}
}

// CodecError is the single error type every bgp and bmp codec
// operation returns. Callers discriminate on Kind (or use
// errors.Is against the ErrKind* sentinels below).
type CodecError struct {
	Kind ErrorKind

	Need, Have int    // ErrorInsufficientBuffer
	Limit      int    // ErrorTooMuchData
	Got        uint8  // ErrorUnsupportedVersion
	Where, Why string // ErrorMalformedField
	Code       uint8  // ErrorUnknownAttribute
	Message    string // ErrorStatic
}

func (e *CodecError) Error() string {
	switch e.Kind {
	case ErrorInsufficientBuffer:
		return fmt.Sprintf("bgp: insufficient buffer: need %d, have %d", e.Need, e.Have)
	case ErrorTooMuchData:
		return fmt.Sprintf("bgp: declared length exceeds limit %d", e.Limit)
	case ErrorMarkerMismatch:
		return "bgp: marker is not all-ones"
	case ErrorUnsupportedVersion:
		return fmt.Sprintf("bgp: unsupported version %d", e.Got)
	case ErrorMalformedField:
		return fmt.Sprintf("bgp: malformed field %s: %s", e.Where, e.Why)
	case ErrorUnknownAttribute:
		return fmt.Sprintf("bgp: unknown attribute type %d", e.Code)
	default:
		return "bgp: " + e.Message
	}
}

// Is implements errors.Is against the Kind-only sentinels below, so
// callers can write `errors.Is(err, bgp.ErrKindMalformedField)`.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is comparisons; they carry only a Kind.
var (
	ErrKindInsufficientBuffer = &CodecError{Kind: ErrorInsufficientBuffer}
	ErrKindTooMuchData        = &CodecError{Kind: ErrorTooMuchData}
	ErrKindMarkerMismatch     = &CodecError{Kind: ErrorMarkerMismatch}
	ErrKindUnsupportedVersion = &CodecError{Kind: ErrorUnsupportedVersion}
	ErrKindMalformedField     = &CodecError{Kind: ErrorMalformedField}
	ErrKindUnknownAttribute   = &CodecError{Kind: ErrorUnknownAttribute}
)

func errInsufficientBuffer(need, have int) error {
	return &CodecError{Kind: ErrorInsufficientBuffer, Need: need, Have: have}
}

func errTooMuchData(limit int) error {
	return &CodecError{Kind: ErrorTooMuchData, Limit: limit}
}

func errMarkerMismatch() error {
	return &CodecError{Kind: ErrorMarkerMismatch}
}

func errUnsupportedVersion(got uint8) error {
	return &CodecError{Kind: ErrorUnsupportedVersion, Got: got}
}

func errMalformedField(where, why string) error {
	return &CodecError{Kind: ErrorMalformedField, Where: where, Why: why}
}

func errUnknownAttribute(code uint8) error {
	return &CodecError{Kind: ErrorUnknownAttribute, Code: code}
}

func errStatic(msg string) error {
	return &CodecError{Kind: ErrorStatic, Message: msg}
}
