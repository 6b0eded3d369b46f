package storage

import "github.com/jackc/pgx/v5/pgxpool"

// Pool exposes the connection pool so tests can truncate and inspect tables.
func (pgr *PostgresRepo) Pool() *pgxpool.Pool {
	return pgr.pool
}
