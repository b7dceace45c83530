package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures reported by yt-dlp, ffmpeg, ffprobe, or
	// the ASR CLI (non-zero exit, unusable output).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks payloads that do not conform to their expected
	// shape: persisted records, tool metadata, LLM responses. Never repaired.
	ErrValidation = errors.New("validation error")
	// ErrPolicy marks preflight disqualifications. Terminal on first sight;
	// retrying cannot change the verdict.
	ErrPolicy = errors.New("policy rejection")
	// ErrConfiguration marks missing or inconsistent configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTimeout marks an external call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures expected to succeed on a later attempt.
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

// IsPolicyRejection reports whether the error carries the policy marker.
func IsPolicyRejection(err error) bool {
	return errors.Is(err, ErrPolicy)
}

// Kind names the classification bucket an error belongs to.
type Kind string

const (
	KindExternalTool  Kind = "external_tool"
	KindValidation    Kind = "validation"
	KindPolicy        Kind = "policy"
	KindConfiguration Kind = "configuration"
	KindTimeout       Kind = "timeout"
	KindTransient     Kind = "transient"
	KindUnknown       Kind = "unknown"
)

// Classify maps an error onto its taxonomy bucket.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrPolicy):
		return KindPolicy
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	case errors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindUnknown
	}
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
