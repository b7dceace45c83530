// Package notifications pushes run and failure events to an ntfy topic.
// Without a configured topic every call is a no-op, so callers never guard
// their notification sites.
package notifications
