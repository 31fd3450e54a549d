// Package preflight verifies the environment before a workflow run:
// directory access, free disk space, database integrity, and the configured
// economics. The health command surfaces the results.
package preflight
