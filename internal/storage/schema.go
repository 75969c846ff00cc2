package storage

// Schema creates the tables on first open. Times are Unix milliseconds;
// structured fields (weights, environment, logs, issues, flour mix)
// live in JSON TEXT columns since nothing queries inside them.
const Schema = `
CREATE TABLE IF NOT EXISTS formulas (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	complexity           TEXT NOT NULL DEFAULT '',
	total_dough_g        REAL NOT NULL,
	hydration_pct        REAL NOT NULL,
	salt_pct             REAL NOT NULL,
	levain_pct           REAL NOT NULL,
	levain_hydration_pct REAL,
	flour_composition    TEXT NOT NULL DEFAULT '{}',
	notes                TEXT NOT NULL DEFAULT '',
	version              INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS bakes (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	formula_id    TEXT NOT NULL,
	formula_name  TEXT NOT NULL DEFAULT '',
	weights       TEXT NOT NULL,
	status        TEXT NOT NULL,
	stage         TEXT NOT NULL,
	start_time    INTEGER NOT NULL,
	target_time   INTEGER NOT NULL,
	environment   TEXT NOT NULL DEFAULT '{}',
	logs          TEXT NOT NULL DEFAULT '[]',
	end_time      INTEGER,
	rating        INTEGER,
	issues        TEXT NOT NULL DEFAULT '[]',
	notes         TEXT NOT NULL DEFAULT '',
	paused_at     INTEGER,
	paused_for_ns INTEGER NOT NULL DEFAULT 0,
	updated_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bakes_status ON bakes(status);

CREATE TABLE IF NOT EXISTS settings (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS levain_builds (
	id         TEXT PRIMARY KEY,
	bake_id    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ready_at   INTEGER,
	payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_levain_bake ON levain_builds(bake_id);
`
