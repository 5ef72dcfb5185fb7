package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    suite                TEXT NOT NULL,
    key                  TEXT NOT NULL,
    value                BLOB NOT NULL,
    updated_at           TEXT NOT NULL,
    PRIMARY KEY (suite, key)
);

CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(suite, updated_at);
`
