// Package workflow drives facade elements through the analysis pipeline:
// radiation analysis, panel matching, yield simulation, and financial
// evaluation. The manager claims each stage transition atomically, so a stage
// runs at most once per element even when several runners share the database,
// and heartbeats let it reclaim elements whose runner died mid-stage.
package workflow
