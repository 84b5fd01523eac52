package storage

const schema = `
CREATE TABLE IF NOT EXISTS applied_deltas (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS key_counts (
    date TEXT NOT NULL,
    hour INTEGER NOT NULL,
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (date, hour, scope, key)
);

CREATE TABLE IF NOT EXISTS bucket_totals (
    date TEXT NOT NULL,
    hour INTEGER NOT NULL,
    scope TEXT NOT NULL,
    keys INTEGER NOT NULL DEFAULT 0,
    letters INTEGER NOT NULL DEFAULT 0,
    modifiers INTEGER NOT NULL DEFAULT 0,
    special INTEGER NOT NULL DEFAULT 0,
    clicks INTEGER NOT NULL DEFAULT 0,
    scrolls INTEGER NOT NULL DEFAULT 0,
    scroll_steps REAL NOT NULL DEFAULT 0,
    distance_px REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (date, hour, scope)
);

CREATE TABLE IF NOT EXISTS spatial_samples (
    date TEXT NOT NULL,
    hour INTEGER NOT NULL,
    scope TEXT NOT NULL,
    monitor INTEGER NOT NULL,
    kind TEXT NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    weight REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (date, hour, scope, monitor, kind, x, y)
);

CREATE TABLE IF NOT EXISTS spatial_rollup (
    date TEXT NOT NULL,
    scope TEXT NOT NULL,
    monitor INTEGER NOT NULL,
    kind TEXT NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    weight REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (date, scope, monitor, kind, x, y)
);

CREATE TABLE IF NOT EXISTS app_usage (
    date TEXT NOT NULL,
    app TEXT NOT NULL,
    keys INTEGER NOT NULL DEFAULT 0,
    clicks INTEGER NOT NULL DEFAULT 0,
    scrolls INTEGER NOT NULL DEFAULT 0,
    distance_px REAL NOT NULL DEFAULT 0,
    foreground_seconds REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (date, app)
);

CREATE TABLE IF NOT EXISTS focus_spans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    app TEXT NOT NULL,
    date TEXT NOT NULL,
    start_ms INTEGER NOT NULL,
    end_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS app_groups (
    app TEXT PRIMARY KEY,
    grp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bucket_totals_scope ON bucket_totals(scope, date, hour);
CREATE INDEX IF NOT EXISTS idx_key_counts_scope ON key_counts(scope, date, hour);
CREATE INDEX IF NOT EXISTS idx_focus_spans_start ON focus_spans(start_ms);
CREATE INDEX IF NOT EXISTS idx_focus_spans_date ON focus_spans(date);
CREATE INDEX IF NOT EXISTS idx_app_usage_app ON app_usage(app);
CREATE INDEX IF NOT EXISTS idx_spatial_samples_lookup ON spatial_samples(monitor, scope, kind, date);
CREATE INDEX IF NOT EXISTS idx_applied_deltas_date ON applied_deltas(date);
`

// prunable lists the dated tables retention applies to.
var prunable = []string{
	"key_counts",
	"bucket_totals",
	"spatial_samples",
	"spatial_rollup",
	"app_usage",
	"focus_spans",
	"applied_deltas",
}
