// Package replay loads the two recorded JSON logs (robot poses and
// carrier detections) and turns them into drawable frames.
//
// # Pairing
//
// Entries are paired by index: robot entry 0 with detection entry 0,
// and so on. Pairing stops at the shorter list. A length mismatch is
// not an error; it is logged once as a warning because it can mask a
// data-alignment bug upstream (e.g. a sensor dropout shifting frames).
//
// With Options.Align set and numeric timestamps present in both logs,
// robot poses are first resampled onto the detection timestamps by
// linear interpolation (see replay/align), which restores a 1:1
// pairing after dropouts.
//
// # Defaults
//
// Every pose field reads as 0.0 when absent or null. This is a
// compatibility contract with older recorders, not validation: a
// wrong-typed field (a string where a number belongs) is a fatal
// decode error.
//
// # Ownership
//
// Load returns the full in-memory frame list plus the bounds over all
// finite outline coordinates. Both are read-only for the rest of the
// run; every other package treats frames as immutable.
package replay
