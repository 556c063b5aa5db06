// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wayfarer/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Start(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, session_id, mode,
			origin_name, origin_lat, origin_lng,
			dest_name, dest_lat, dest_lng,
			distance_m, expected_secs, outcome, started_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13
		)`,
		string(t.ID), string(t.SessionID), t.Mode,
		t.Origin.Name, t.Origin.Point.Lat, t.Origin.Point.Lng,
		t.Destination.Name, t.Destination.Point.Lat, t.Destination.Point.Lng,
		t.DistanceMeters, int(t.ExpectedDuration.Seconds()), string(OutcomeInProgress), t.StartedAt,
	)
	return err
}

// Finish closes an open trip. Finishing an already closed trip reports ErrNotFound.
func (s *Store) Finish(ctx context.Context, id types.ID, outcome Outcome, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips SET outcome = $2, finished_at = $3
		WHERE id = $1 AND finished_at IS NULL`,
		string(id), string(outcome), at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id::text, session_id::text, mode,
		       origin_name, origin_lat, origin_lng,
		       dest_name, dest_lat, dest_lng,
		       distance_m, expected_secs, outcome, started_at, finished_at
		FROM trips
		WHERE id = $1`, string(id),
	)

	var t Trip
	var tripID, sessionID, outcome string
	var expectedSecs int
	err := row.Scan(
		&tripID, &sessionID, &t.Mode,
		&t.Origin.Name, &t.Origin.Point.Lat, &t.Origin.Point.Lng,
		&t.Destination.Name, &t.Destination.Point.Lat, &t.Destination.Point.Lng,
		&t.DistanceMeters, &expectedSecs, &outcome, &t.StartedAt, &t.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.ID = types.ID(tripID)
	t.SessionID = types.ID(sessionID)
	t.Outcome = Outcome(outcome)
	t.ExpectedDuration = time.Duration(expectedSecs) * time.Second
	return &t, nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, session_id::text, mode, dest_name, dest_lat, dest_lng,
		       distance_m, outcome, started_at, finished_at
		FROM trips
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		var t Trip
		var tripID, sessionID, outcome string
		if err := rows.Scan(&tripID, &sessionID, &t.Mode, &t.Destination.Name,
			&t.Destination.Point.Lat, &t.Destination.Point.Lng,
			&t.DistanceMeters, &outcome, &t.StartedAt, &t.FinishedAt); err != nil {
			return nil, err
		}
		t.ID = types.ID(tripID)
		t.SessionID = types.ID(sessionID)
		t.Outcome = Outcome(outcome)
		out = append(out, t)
	}
	return out, rows.Err()
}
