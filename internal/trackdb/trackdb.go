// Package trackdb persists finished tracks and gate decisions to
// SQLite. It sits outside the hot path: the replay tooling writes
// after a session completes, never from the frame loop.
package trackdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "embed"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bwierzbo/bumpsetcut-core/internal/ballistics"
	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/monitoring"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// schema.sql holds the base schema; later changes live under
// migrations/ and are applied through the migrate wrapper.
//
//go:embed schema.sql
var schemaSQL string

// DB is the session store handle.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the store at path and applies the
// base schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open track store: %w", err)
	}

	// Single writer; WAL keeps readers unblocked during replay writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply base schema: %w", err)
	}

	monitoring.Debugf("opened track store at %s", path)
	return &DB{db}, nil
}

// Session is one stored processing run.
type Session struct {
	ID        string
	StartedAt float64
	Source    string
	Notes     string
}

// StartSession records a new session and returns its ID. The full
// configuration is stored alongside so sweep results stay
// reproducible.
func (db *DB) StartSession(ctx context.Context, startedAt float64, source, notes string, cfg *config.Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal session config: %w", err)
	}

	id := fmt.Sprintf("ses_%s", uuid.NewString())
	_, err = db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, source, config_json, notes) VALUES (?, ?, ?, ?, ?)`,
		id, startedAt, source, string(cfgJSON), notes)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// InsertTrack stores one finished track with its full sample history,
// in a single transaction.
func (db *DB) InsertTrack(ctx context.Context, sessionID string, tr track.Track) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert track: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tracks (id, session_id, first_t, last_t, sample_count, age) VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID, sessionID, tr.FirstT, tr.LastT, len(tr.History), tr.Age)
	if err != nil {
		return fmt.Errorf("insert track %s: %w", tr.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO track_samples (track_id, idx, x, y, t) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range tr.History {
		if _, err := stmt.ExecContext(ctx, tr.ID, i, s.P.X, s.P.Y, s.T); err != nil {
			return fmt.Errorf("insert sample %d of %s: %w", i, tr.ID, err)
		}
	}

	return tx.Commit()
}

// InsertDecision stores one gate decision for a stored track.
func (db *DB) InsertDecision(ctx context.Context, sessionID, trackID string, d ballistics.GateDecision) error {
	var r2, classConf, quality sql.NullFloat64
	var movement sql.NullString
	if d.Validation != nil {
		r2 = sql.NullFloat64{Float64: d.Validation.R2, Valid: true}
	}
	if d.Classification != nil {
		movement = sql.NullString{String: string(d.Classification.Type), Valid: true}
		classConf = sql.NullFloat64{Float64: d.Classification.Confidence, Valid: true}
	}
	if d.Quality != nil {
		quality = sql.NullFloat64{Float64: d.Quality.Overall, Valid: true}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO decisions (session_id, track_id, accepted, confidence, reason, r2, movement_type, class_confidence, quality_overall)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, trackID, d.Accept, d.Confidence, d.Reason, r2, movement, classConf, quality)
	if err != nil {
		return fmt.Errorf("insert decision for %s: %w", trackID, err)
	}
	return nil
}

// TrackRecord is a stored track summary.
type TrackRecord struct {
	ID          string
	SessionID   string
	FirstT      float64
	LastT       float64
	SampleCount int
	Age         int
}

// TracksForSession returns the stored track summaries for a session,
// ordered by first timestamp.
func (db *DB) TracksForSession(ctx context.Context, sessionID string) ([]TrackRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, first_t, last_t, sample_count, age FROM tracks WHERE session_id = ? ORDER BY first_t, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var out []TrackRecord
	for rows.Next() {
		var r TrackRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.FirstT, &r.LastT, &r.SampleCount, &r.Age); err != nil {
			return nil, fmt.Errorf("scan track row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SamplesForTrack returns a stored track's history in sample order.
func (db *DB) SamplesForTrack(ctx context.Context, trackID string) ([]track.Sample, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT x, y, t FROM track_samples WHERE track_id = ? ORDER BY idx`, trackID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []track.Sample
	for rows.Next() {
		var s track.Sample
		if err := rows.Scan(&s.P.X, &s.P.Y, &s.T); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DecisionRecord is a stored gate decision.
type DecisionRecord struct {
	SessionID       string
	TrackID         string
	Accepted        bool
	Confidence      float64
	Reason          string
	R2              sql.NullFloat64
	MovementType    sql.NullString
	ClassConfidence sql.NullFloat64
	QualityOverall  sql.NullFloat64
}

// DecisionsForSession returns the stored decisions for a session.
func (db *DB) DecisionsForSession(ctx context.Context, sessionID string) ([]DecisionRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT session_id, track_id, accepted, confidence, reason, r2, movement_type, class_confidence, quality_overall
		 FROM decisions WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var r DecisionRecord
		if err := rows.Scan(&r.SessionID, &r.TrackID, &r.Accepted, &r.Confidence, &r.Reason,
			&r.R2, &r.MovementType, &r.ClassConfidence, &r.QualityOverall); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionByID returns one stored session.
func (db *DB) SessionByID(ctx context.Context, id string) (Session, error) {
	var s Session
	err := db.QueryRowContext(ctx,
		`SELECT id, started_at, source, notes FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.StartedAt, &s.Source, &s.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	return s, nil
}
