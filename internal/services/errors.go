package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction      = errors.New("extraction error")
	ErrTranscription   = errors.New("transcription error")
	ErrEngineLoad      = errors.New("engine load error")
	ErrTranscode       = errors.New("transcode error")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrEngineBusy      = errors.New("engine busy")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
)

// Error carries the marker, stage, and operation of a pipeline failure.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	marker := "service failure"
	if e.Marker != nil {
		marker = e.Marker.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", marker, detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", marker, detail)
}

// Unwrap exposes both the marker and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Marker != nil {
		out = append(out, e.Marker)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker. The marker should be one of the exported sentinel errors.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTranscode
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// ErrorDetails is the display-oriented view of a wrapped error.
type ErrorDetails struct {
	Kind      string
	Stage     string
	Operation string
	Message   string
	Cause     string
}

// Details extracts display context from err. Unwrapped errors only populate
// Message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return ErrorDetails{Message: strings.TrimSpace(err.Error())}
	}
	details := ErrorDetails{
		Stage:     svcErr.Stage,
		Operation: svcErr.Operation,
		Message:   svcErr.Message,
	}
	if svcErr.Marker != nil {
		details.Kind = svcErr.Marker.Error()
	}
	if svcErr.Cause != nil {
		details.Cause = strings.TrimSpace(svcErr.Cause.Error())
	}
	if details.Message == "" {
		details.Message = details.Cause
	}
	return details
}

// Marker returns the sentinel err was tagged with, or nil.
func Marker(err error) error {
	for _, marker := range []error{
		ErrExtraction,
		ErrTranscription,
		ErrEngineLoad,
		ErrTranscode,
		ErrInvalidDuration,
		ErrEngineBusy,
		ErrValidation,
		ErrConfiguration,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
