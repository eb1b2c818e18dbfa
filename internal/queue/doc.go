// Package queue persists transcription jobs in SQLite and owns every state
// transition in their lifecycle.
//
// The Store manages database connections, schema initialization, per-folder
// serial counters, claim semantics, retry scheduling, stale-job recovery, and
// maintenance queries. Jobs move queued -> processing -> done/failed, with
// failed attempts rescheduled through the backoff policy until the attempt
// budget is exhausted.
//
// The database is the single source of truth: no in-memory job state is
// authoritative, so a process restart loses nothing. Schema changes bump the
// version in schema.go; users clear the database to adopt the new schema.
package queue
