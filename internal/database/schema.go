package database

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    slug          TEXT      NOT NULL UNIQUE,
    name          TEXT      NOT NULL,
    description   TEXT      NOT NULL,
    category      TEXT      NOT NULL,
    href          TEXT      NOT NULL,
    avatar        TEXT,
    type          TEXT      NOT NULL CHECK (type IN ('agent', 'tool')),
    pricing_model TEXT      NOT NULL CHECK (pricing_model IN ('free', 'freemium', 'paid')),
    tags          TEXT      NOT NULL DEFAULT '[]',
    key_benefits  TEXT      NOT NULL DEFAULT '[]',
    who_is_it_for TEXT      NOT NULL DEFAULT '[]',
    is_new        BOOLEAN   NOT NULL DEFAULT 0,
    demo_video    TEXT,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
CREATE INDEX IF NOT EXISTS idx_items_listing_order ON items(is_new, created_at);

CREATE TABLE IF NOT EXISTS features (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id         INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    feature         TEXT    NOT NULL,
    description     TEXT    NOT NULL DEFAULT '',
    timestamp_start INTEGER NOT NULL,
    timestamp_end   INTEGER NOT NULL,
    CHECK (timestamp_start >= 0 AND timestamp_start <= timestamp_end)
);

CREATE INDEX IF NOT EXISTS idx_features_item ON features(item_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
    id            BIGSERIAL PRIMARY KEY,
    slug          TEXT        NOT NULL UNIQUE,
    name          TEXT        NOT NULL,
    description   TEXT        NOT NULL,
    category      TEXT        NOT NULL,
    href          TEXT        NOT NULL,
    avatar        TEXT,
    type          TEXT        NOT NULL CHECK (type IN ('agent', 'tool')),
    pricing_model TEXT        NOT NULL CHECK (pricing_model IN ('free', 'freemium', 'paid')),
    tags          TEXT        NOT NULL DEFAULT '[]',
    key_benefits  TEXT        NOT NULL DEFAULT '[]',
    who_is_it_for TEXT        NOT NULL DEFAULT '[]',
    is_new        BOOLEAN     NOT NULL DEFAULT FALSE,
    demo_video    TEXT,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
CREATE INDEX IF NOT EXISTS idx_items_listing_order ON items(is_new, created_at);

CREATE TABLE IF NOT EXISTS features (
    id              BIGSERIAL PRIMARY KEY,
    item_id         BIGINT  NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    feature         TEXT    NOT NULL,
    description     TEXT    NOT NULL DEFAULT '',
    timestamp_start INTEGER NOT NULL,
    timestamp_end   INTEGER NOT NULL,
    CHECK (timestamp_start >= 0 AND timestamp_start <= timestamp_end)
);

CREATE INDEX IF NOT EXISTS idx_features_item ON features(item_id);
`
