package store

import (
	"database/sql"
	"errors"
	"time"
)

// WaveEvent is one detected wave: opened when the detector first
// reports waving and closed when the signal drops again.
type WaveEvent struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	PeakPixels int
}

// EventRepository provides access to the wave event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Begin records the start of a wave event.
func (r *EventRepository) Begin(e *WaveEvent) error {
	_, err := r.db.Exec(
		`INSERT INTO wave_events (id, started_at, peak_pixels) VALUES (?, ?, ?)`,
		e.ID, e.StartedAt, e.PeakPixels,
	)
	return err
}

// Finish closes a wave event, recording when it ended and the largest
// active-pixel count observed while it was running.
func (r *EventRepository) Finish(id string, endedAt time.Time, peakPixels int) error {
	result, err := r.db.Exec(
		`UPDATE wave_events SET ended_at = ?, peak_pixels = ? WHERE id = ?`,
		endedAt, peakPixels, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a wave event by its ID.
func (r *EventRepository) GetByID(id string) (*WaveEvent, error) {
	e := &WaveEvent{}
	var endedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, peak_pixels FROM wave_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.StartedAt, &endedAt, &e.PeakPixels)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		e.EndedAt = &endedAt.Time
	}
	return e, nil
}

// List retrieves the most recent wave events, newest first.
func (r *EventRepository) List(limit int) ([]*WaveEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, peak_pixels
		 FROM wave_events ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*WaveEvent
	for rows.Next() {
		e := &WaveEvent{}
		var endedAt sql.NullTime

		if err := rows.Scan(&e.ID, &e.StartedAt, &endedAt, &e.PeakPixels); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			e.EndedAt = &endedAt.Time
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
