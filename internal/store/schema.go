package store

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    app TEXT NOT NULL,
    value TEXT NOT NULL,
    ok BOOLEAN NOT NULL,
    kind TEXT NOT NULL,
    observed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_app ON observations(app);
CREATE INDEX IF NOT EXISTS idx_observations_observed_at ON observations(observed_at);
`
