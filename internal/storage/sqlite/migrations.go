package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS processed_settlements (
    id TEXT PRIMARY KEY,
    settlement_date TEXT NOT NULL,
    group_id INTEGER NOT NULL,
    draft_hash TEXT NOT NULL UNIQUE,
    ledger_transaction_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS category_mappings (
    id TEXT PRIMARY KEY,
    pattern TEXT NOT NULL UNIQUE,
    category_id TEXT NOT NULL,
    source TEXT NOT NULL,
    confidence REAL,
    rationale TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processed_settlements_date ON processed_settlements(settlement_date);
CREATE INDEX IF NOT EXISTS idx_category_mappings_pattern ON category_mappings(pattern);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
