// Package postgres provides a PostgreSQL-backed implementation of driven.ChunkStore.
//
// Connections come from a pgx/v5 pool. The schema is applied with
// golang-migrate from migrations embedded in the binary.
package postgres
