// Package records persists the durable per-item state machine.
//
// One JSON document per item id lives under the records directory. The mere
// existence of a record is the idempotency gate for the whole pipeline: the
// selector never re-surfaces an id that has a record, whatever its status.
// Saves are atomic and fsynced because they double as crash checkpoints
// between stages. Records in a terminal status (succeeded, failed) are never
// mutated again, and nothing in this system deletes a record.
package records
