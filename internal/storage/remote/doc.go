// Package remote implements the cloud backend over PostgreSQL (pgx stdlib
// driver).
//
// Tables: food_entries, profiles, user_settings and daily_summaries (keyed
// by user and date). Entry reads use one of three projections: full, lite
// (no image, no recognition snapshot, no owner column) and aggregate (id,
// date and macros). List queries are capped at Options.ListLimit rows,
// newest first.
//
// Driver errors are classified into the common taxonomy: SQLSTATE codes
// first, message heuristics second, common.ErrRemoteBackend otherwise.
//
// Writes are gated on a schema check: the first write queries food_entries
// and refuses with common.ErrRemoteSchemaMissing when the tables are absent.
// A passing check is remembered for the lifetime of the Store.
//
// The SQL sticks to the subset PostgreSQL and SQLite share, so any
// database/sql handle with the same tables can back a Store.
package remote
