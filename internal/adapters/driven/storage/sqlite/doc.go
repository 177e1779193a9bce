// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file serves two stores:
//
//   - DocumentStore: documents for the local backends, searched through an FTS5 index
//   - Analytics: the search event log behind AnalyticsGateway
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.unisearch/data/unisearch.db
package sqlite
