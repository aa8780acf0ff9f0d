// Package state persists durable run bookkeeping in SQLite: the episode
// counter, the last successful run time, the latest publication record, the
// append-only run history, and the past-topics log used to avoid repeating
// coverage.
package state
