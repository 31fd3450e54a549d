// Package store persists projects and facade elements in SQLite and enforces
// the pipeline's processing invariants.
//
// Two rules keep per-element processing exactly-once:
//
//   - Registration is idempotent. Every element carries a fingerprint derived
//     from its identifying fields, and (project_id, fingerprint) is unique, so
//     repeated imports of the same source data never create duplicate rows.
//   - Stage transitions are claimed. Claim performs a conditional UPDATE from
//     the stage's start status to its processing status; zero affected rows
//     means another claimant won and the element must be skipped.
//
// Heartbeats recorded during stage execution allow ReclaimStaleProcessing to
// roll crashed elements back to the start of their current stage, where the
// claim guard makes the rerun safe.
package store
