// Package history persists device state changes to SQLite.
//
// Every engine state-change event becomes one row in the
// state_history table, giving a local audit trail that survives
// restarts. The newest row per address doubles as the snapshot the
// daemon restores the engine from at startup, and rows older than the
// configured retention are pruned periodically.
package history
