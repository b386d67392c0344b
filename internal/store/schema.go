package store

const schema = `
-- Single help document (id is always 1)
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    title TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Sections in display order; items is a JSON array of strings
CREATE TABLE IF NOT EXISTS sections (
    position INTEGER PRIMARY KEY,
    section_id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    items TEXT NOT NULL DEFAULT '[]'
);
`
