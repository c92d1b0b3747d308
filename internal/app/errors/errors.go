package errors

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. Every step failure carries exactly
// one kind so callers can branch without string matching.
type Kind string

const (
	KindAcquisition   Kind = "acquisition"
	KindTranscode     Kind = "transcode"
	KindTranscription Kind = "transcription"
	KindMerge         Kind = "merge"
	KindResolution    Kind = "resolution"
	KindSummarize     Kind = "summarize"
)

// Error is a classified pipeline error with an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Acquisition reports a failure fetching the source audio.
func Acquisition(format string, args ...interface{}) *Error {
	return newError(KindAcquisition, fmt.Sprintf(format, args...), nil)
}

// Transcode reports a local ffmpeg/ffprobe failure.
func Transcode(format string, args ...interface{}) *Error {
	return newError(KindTranscode, fmt.Sprintf(format, args...), nil)
}

// Transcription reports a speech-to-text provider failure.
func Transcription(format string, args ...interface{}) *Error {
	return newError(KindTranscription, fmt.Sprintf(format, args...), nil)
}

// Merge reports a missing or out-of-order segment index.
func Merge(format string, args ...interface{}) *Error {
	return newError(KindMerge, fmt.Sprintf(format, args...), nil)
}

// Resolution reports a failure locating the episode audio source.
func Resolution(format string, args ...interface{}) *Error {
	return newError(KindResolution, fmt.Sprintf(format, args...), nil)
}

// Summarize reports a summarization provider failure. Non-fatal to the
// job; the transcript is still delivered.
func Summarize(format string, args ...interface{}) *Error {
	return newError(KindSummarize, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches a kind and context to an underlying error. Returns nil
// when err is nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return newError(kind, message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newError(kind, fmt.Sprintf(format, args...), err)
}

// Error implements the error interface. The lowest-level cause message
// stays visible; nothing is swallowed.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err (or anything it wraps) carries kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.kind == kind
	}
	return false
}
