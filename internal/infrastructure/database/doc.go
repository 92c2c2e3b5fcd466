// Package database provides SQLite connection management for RoomLink Core.
//
// This package manages:
//   - Opening the SQLite database with WAL mode and busy timeout
//   - Schema migrations embedded in the binary
//   - Health checks and connection statistics
//
// SQLite is used for the command catalog, the room registry, and the
// command delivery history. The pending-command queues themselves are
// in-memory only; the short-poll protocol is best-effort by design and
// gains nothing from persisting queues across restarts.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/roomlink.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
