// Package pipeline contains the orchestration core: the stage runner that
// drives one item through the eight stages, and the run coordinator that
// scopes a batch, selects candidates, and processes them strictly in order.
//
// The durable truth lives in the item record files. The runner persists the
// record before every stage, so a crash at any point leaves an accurate
// step marker and the next invocation can decide what to do purely from
// on-disk state.
package pipeline
