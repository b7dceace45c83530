package pipeline

import "fmt"

type outcomeKind int

const (
	outcomeSucceeded outcomeKind = iota
	outcomeFailed
	outcomeSkipped
)

// Outcome is the closed result of processing one item: succeeded, failed
// with a reason, or skipped with a reason.
type Outcome struct {
	kind   outcomeKind
	reason string
}

// Succeeded marks a delivered item.
func Succeeded() Outcome {
	return Outcome{kind: outcomeSucceeded}
}

// Failed marks an item whose processing raised a counted failure or a policy
// rejection.
func Failed(reason string) Outcome {
	return Outcome{kind: outcomeFailed, reason: reason}
}

// Skipped marks an item whose record was already terminal.
func Skipped(reason string) Outcome {
	return Outcome{kind: outcomeSkipped, reason: reason}
}

func (o Outcome) IsSucceeded() bool { return o.kind == outcomeSucceeded }
func (o Outcome) IsFailed() bool    { return o.kind == outcomeFailed }
func (o Outcome) IsSkipped() bool   { return o.kind == outcomeSkipped }

// Reason explains failed and skipped outcomes; empty for success.
func (o Outcome) Reason() string { return o.reason }

func (o Outcome) String() string {
	switch o.kind {
	case outcomeSucceeded:
		return "succeeded"
	case outcomeFailed:
		return fmt.Sprintf("failed (%s)", o.reason)
	default:
		return fmt.Sprintf("skipped (%s)", o.reason)
	}
}
