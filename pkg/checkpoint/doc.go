// Package checkpoint persists harvest progress as the output CSV itself.
//
// There is no separate checkpoint file: the counts CSV (and the handles
// CSV in discovery mode) is rewritten atomically after every subject, so
// the output is always a valid resume point. A killed or crashed run picks
// up by loading its own output, merging the rows back into roster order,
// and scanning for the position after the last fully filled row.
//
// Atomic rewrite means temp file + fsync + rename; readers and a resumed
// run never observe a half-written file.
package checkpoint
