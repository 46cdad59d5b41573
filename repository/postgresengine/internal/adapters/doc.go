// Package adapters hides the differences between pgxpool.Pool, sql.DB and sqlx.DB behind DBAdapter.
//
// Queries are routed by the consistency level found in the context: eventual consistency reads
// go to the replica if one is configured, everything else goes to the primary.
package adapters
