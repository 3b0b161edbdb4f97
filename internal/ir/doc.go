// Package ir provides the literal value types used in filter predicates and
// the canonical encoding used to fingerprint them.
//
// This package imports nothing internal. filterir builds on it for literal
// nodes; the store uses the fingerprints as compiled-query cache keys.
//
// Key constraints:
//   - Value is sealed: Null, String, Int, Double, Bool, List
//   - Canonical JSON sorts keys by UTF-16 code units and keeps strings byte-exact
//   - Fingerprints are SHA-256 with domain separation
package ir
