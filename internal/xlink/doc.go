// Package xlink provides an in-memory database of cross-link observations
// loaded from delimited text.
//
// A cross-link is a distance constraint between two residues, possibly on two
// different proteins, observed by cross-linking mass spectrometry. Each row of
// the input table becomes one Record; the KeyMap names which input columns
// carry the logical roles:
//
//	protein1, protein2   free text (required)
//	residue1, residue2   integers (required)
//	unique_id            integer (optional) - groups ambiguous explanations
//	id_score             float (optional) - per-record identification score
//
// # Lifecycle
//
// A Store starts unloaded (NewStore) and becomes loaded by parsing one table
// in full (Load). Loading is all-or-nothing: a malformed row leaves the store
// unloaded. Once loaded, a Store is mutated in place only by SetValue,
// CloneProtein, RenameProteins, OffsetResidues and Append. Filter and Dedupe
// return fresh loaded stores and never touch their parent.
//
// # Predicates
//
// Filtering uses a small predicate IR: Compare{Key, Op, Value} leaves
// combined with And, Or and Not. The same tree is evaluated in memory here
// and compiled to SQL by internal/xlsql. Comparands are coerced to the kind of the key they are compared
// against, so Compare{unique_id, OpEq, String("2")} matches the integer id 2.
//
// # Errors
//
// ConfigurationError, ParseError and LookupError are returned immediately at
// the point of detection. Zero matches from Filter or SetValue is never an
// error.
//
// A Store is not safe for concurrent mutation.
package xlink
