// Package database provides SQLite connectivity for the tracker store.
//
// This package manages:
//   - Opening the database with foreign keys enforced and WAL enabled
//   - Schema migrations embedded in the binary
//   - Transaction scoping via WithTx
//   - Classification of SQLite constraint failures
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions since it holds password hashes.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive: new columns must be nullable or carry a default,
// and every .up.sql file ships with a matching .down.sql.
package database
