// Package store provides a SQLite-backed metadata store queried with filters.
//
// The store holds the metadata graph the filter compiler targets:
//   - Types: one table for artifact, execution and context types
//   - Artifacts, Executions, Contexts: records with typed property tables
//   - Attribution, Association: context membership of artifacts and executions
//   - ParentContext: the context hierarchy
//   - Event: artifact inputs and outputs of executions
//
// Reads go through ListIDs: the filter is resolved, compiled in the SQLite
// dialect, wrapped in a SELECT DISTINCT and run. Compiled clauses are cached
// by filter fingerprint, so repeated list calls with the same filter skip
// resolution and compilation.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
