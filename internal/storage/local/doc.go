// Package local implements the on-device backend: a SQLite file holding a
// flat key/value table whose values are JSON documents, one per namespace
// (entries, summaries, settings, profile) plus the persisted mode
// preference.
//
// Every namespace is rewritten wholesale on change. A value larger than the
// device quota is refused with common.ErrDeviceStorageFull before anything
// is written, and SQLITE_FULL from the driver is classified the same way.
package local
