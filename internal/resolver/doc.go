// Package resolver turns abstract room intents into concrete catalog
// entries. An intent names what the user wants ("power", "volume up",
// "set the AC to 23 degrees"); the resolver searches the taught command
// catalog for the single best entry, applying per-type matching rules
// and, for air conditioners, a closest-temperature fallback ladder when
// no exact code was ever taught.
//
// Resolution is deterministic: a fixed catalog and a fixed intent
// always yield the same entry. A resolver call returns at most one
// entry; no match is reported as ErrNoMatch, never as a fault.
package resolver
