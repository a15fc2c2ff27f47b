// Package common contains shared constants and sentinel errors used across
// dashboard components.
package common

// ManifestIDPrefix is the fixed prefix of every manifest identifier.
// Full identifiers have the form MAO-YY#######, sequential per year.
const ManifestIDPrefix = "MAO-"

// ManifestIDSuffixDigits is the zero-padded width of the sequential suffix.
const ManifestIDSuffixDigits = 7

// MinJustificationLen is the minimum length of the free-text justification
// required when editing an already-received manifest.
const MinJustificationLen = 5

// SnapshotLimit caps how many manifests the dashboard keeps in memory;
// the store query is ordered most-recent-first and limited to this value.
const SnapshotLimit = 500
