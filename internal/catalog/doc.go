// Package catalog holds the capability facts the state engine consults
// when dispatching powerline commands: which addresses dim, which
// respond to whole-house broadcasts, which understand extended
// set-level or preset-dim, and which scene an address fans out to.
//
// Key Responsibilities:
//   - Load and save the device/scene capability document (JSON on
//     disk, keyed by textual address)
//   - Resolve per-field defaults for sparse documents
//   - Answer the engine's capability queries with three-valued
//     semantics: a known true, a known false, or "address unknown"
//
// Unknown vs False:
//
// An address with no catalog entry is unknown, not incapable. Several
// dispatch rules skip unknown addresses entirely instead of treating
// them as false, so every per-address query returns an explicit
// known/unknown flag alongside the capability value.
//
// A catalog is an immutable snapshot once loaded. The engine never
// mutates it; reload by loading a fresh catalog and swapping the
// reference.
package catalog
