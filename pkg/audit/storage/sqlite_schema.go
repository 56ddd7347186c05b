package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit records table
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,

    template_hash TEXT NOT NULL,
    provider TEXT,

    valid BOOLEAN NOT NULL,
    error_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    score INTEGER NOT NULL,

    findings TEXT
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_template_hash ON audit(template_hash);
CREATE INDEX IF NOT EXISTS idx_audit_provider ON audit(provider);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion inserts the schema version if not present.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version) VALUES (?)
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1
`
