package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/upsnap/internal/registry"
)

// RecordObservation appends one measurement to the history.
func (s *Store) RecordObservation(app string, value registry.Value, kind string) error {
	query := `
		INSERT INTO observations (app, value, ok, kind, observed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		app,
		value.String(),
		!value.IsNone(),
		kind,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record observation for %s: %w", app, err)
	}

	return nil
}

// ListObservations returns the most recent observations for an app, newest
// first, up to limit rows. limit <= 0 returns everything.
func (s *Store) ListObservations(app string, limit int) ([]*Observation, error) {
	query := `
		SELECT id, app, value, ok, kind, observed_at
		FROM observations
		WHERE app = ?
		ORDER BY observed_at DESC, id DESC
	`
	args := []interface{}{app}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations for %s: %w", app, err)
	}
	defer rows.Close()

	var observations []*Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return observations, nil
}

// LastObservation returns the most recent observation for an app, or nil
// when the app has never been measured.
func (s *Store) LastObservation(app string) (*Observation, error) {
	query := `
		SELECT id, app, value, ok, kind, observed_at
		FROM observations
		WHERE app = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT 1
	`

	row := s.db.QueryRow(query, app)

	var obs Observation
	var observedAt string
	err := row.Scan(&obs.ID, &obs.App, &obs.Value, &obs.OK, &obs.Kind, &observedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last observation for %s: %w", app, err)
	}

	obs.ObservedAt, err = time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observed_at for %s: %w", app, err)
	}

	return &obs, nil
}

// DeleteObservations removes all history rows for an app. Called when the
// app itself is removed from the registry.
func (s *Store) DeleteObservations(app string) error {
	if _, err := s.db.Exec(`DELETE FROM observations WHERE app = ?`, app); err != nil {
		return fmt.Errorf("failed to delete observations for %s: %w", app, err)
	}
	return nil
}

// ObservationCount returns the total number of recorded observations.
func (s *Store) ObservationCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}

// scanObservation reads one observations row.
func scanObservation(rows *sql.Rows) (*Observation, error) {
	var obs Observation
	var observedAt string

	err := rows.Scan(&obs.ID, &obs.App, &obs.Value, &obs.OK, &obs.Kind, &observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan observation row: %w", err)
	}

	obs.ObservedAt, err = time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observed_at: %w", err)
	}

	return &obs, nil
}
