// Package database provides SQLite database connectivity for the manual hub.
//
// This package manages:
//   - Database connection with WAL mode for concurrent reads
//   - Schema migrations from an embedded filesystem
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "data/manualhub.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive-only: new columns must be nullable or carry a
// DEFAULT, and each migration file has both .up.sql and .down.sql.
package database
