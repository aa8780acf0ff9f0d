package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCollaborator marks any failure returned by an external
	// content-generation or publishing call. The orchestrator does not
	// distinguish network, auth, or validation sub-causes.
	ErrCollaborator = errors.New("collaborator error")
	// ErrEmptyResult marks a call that succeeded but produced no usable
	// payload. For critical stages this counts as a failure.
	ErrEmptyResult = errors.New("empty result")
	// ErrConfiguration marks unusable configuration. Fatal at startup, never
	// recoverable mid-run.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsEmptyResult reports whether err is tagged as an empty-result failure.
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResult)
}

// IsConfiguration reports whether err is tagged as a configuration failure.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
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
