// Package logging configures log/slog output for subcast.
//
// Two formats are supported: a human-oriented console format used for
// interactive runs and a JSON format for log shipping. Both write to stdout
// and, when a log directory is configured, to subcast.log. Helpers in this
// package standardize attribute construction and derive per-item fields
// (item id, stage, run id) from the context so stage code never builds those
// by hand.
package logging
