package sqlite

// Schema contains the SQL statements to create the database schema.
// Applied on every open; all statements are idempotent.
const Schema = `
-- Documents registered for tagging.
CREATE TABLE IF NOT EXISTS documents (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    title         TEXT NOT NULL DEFAULT '',
    body          TEXT NOT NULL,
    source        TEXT NOT NULL DEFAULT '',
    content_type  TEXT NOT NULL DEFAULT 'text/plain',
    content_hash  TEXT NOT NULL UNIQUE,
    tagged_at     TIMESTAMP,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_tagged_at ON documents(tagged_at);

-- The tag catalog. Names are normalized and carry the '#' marker.
CREATE TABLE IF NOT EXISTS tags (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Document/tag links with provenance.
CREATE TABLE IF NOT EXISTS document_tags (
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    origin      TEXT NOT NULL DEFAULT 'manual',
    created_at  TIMESTAMP NOT NULL,
    PRIMARY KEY (document_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_document_tags_tag_id ON document_tags(tag_id);

-- One row per remote model call, for cost accounting.
CREATE TABLE IF NOT EXISTS usage_log (
    id            TEXT PRIMARY KEY,
    provider      TEXT NOT NULL,
    model         TEXT NOT NULL,
    operation     TEXT NOT NULL,
    input_tokens  INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd      REAL NOT NULL DEFAULT 0,
    created_at    TIMESTAMP NOT NULL
);

-- Background job bookkeeping, mirroring the Asynq queue.
CREATE TABLE IF NOT EXISTS jobs (
    id                  TEXT PRIMARY KEY,
    task_type           TEXT NOT NULL,
    payload             BLOB,
    queue               TEXT NOT NULL DEFAULT 'default',
    status              TEXT NOT NULL DEFAULT 'enqueued',
    related_entity_type TEXT,
    related_entity_id   INTEGER,
    last_error          TEXT,
    created_at          TIMESTAMP NOT NULL,
    updated_at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`
