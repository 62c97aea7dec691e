package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMatchNotFound is returned when finalizing a match that was never created.
var ErrMatchNotFound = errors.New("match not found")

// SQLiteStore is the SQLite-backed Recorder.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the match database and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open DB: %w", err)
	}

	ctx := context.Background()

	// WAL keeps history reads cheap while matches finalize concurrently.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS matches (
		id          TEXT PRIMARY KEY,
		map         TEXT    NOT NULL DEFAULT '',
		p1_user_id  TEXT    NOT NULL,
		p1_login    TEXT    NOT NULL,
		p1_score    INTEGER NOT NULL DEFAULT 0,
		p2_user_id  TEXT    NOT NULL,
		p2_login    TEXT    NOT NULL,
		p2_score    INTEGER NOT NULL DEFAULT 0,
		winner      TEXT    NOT NULL DEFAULT '',
		forfeit     INTEGER NOT NULL DEFAULT 0,
		finished    INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL,
		started_at  INTEGER NOT NULL DEFAULT 0,
		ended_at    INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches(ended_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateMatch inserts the initial row for a session.
func (s *SQLiteStore) CreateMatch(ctx context.Context, m *Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, p1_user_id, p1_login, p2_user_id, p2_login, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.Players[0].UserID, m.Players[0].Login,
		m.Players[1].UserID, m.Players[1].Login,
		m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("history: create match: %w", err)
	}
	return nil
}

// FinishMatch finalizes the row with map, scores, winner and timing. If the
// match row is missing (process restarted mid-game) it is inserted whole so
// the record is never lost.
func (s *SQLiteStore) FinishMatch(ctx context.Context, m *Match) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE matches
		SET map = ?, p1_score = ?, p2_score = ?, winner = ?, forfeit = ?,
		    finished = 1, started_at = ?, ended_at = ?, duration_ms = ?
		WHERE id = ?`,
		m.Map, m.Players[0].Score, m.Players[1].Score, m.Winner, boolInt(m.Forfeit),
		m.StartedAt.UnixMilli(), m.EndedAt.UnixMilli(), m.Duration.Milliseconds(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("history: finish match: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO matches (id, map, p1_user_id, p1_login, p1_score,
				p2_user_id, p2_login, p2_score, winner, forfeit, finished,
				created_at, started_at, ended_at, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
			m.ID, m.Map,
			m.Players[0].UserID, m.Players[0].Login, m.Players[0].Score,
			m.Players[1].UserID, m.Players[1].Login, m.Players[1].Score,
			m.Winner, boolInt(m.Forfeit),
			m.CreatedAt.UnixMilli(), m.StartedAt.UnixMilli(), m.EndedAt.UnixMilli(),
			m.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("history: finish match insert: %w", err)
		}
	}
	return nil
}

// History returns the most recently finished matches, newest first.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]*Match, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, map, p1_user_id, p1_login, p1_score,
		       p2_user_id, p2_login, p2_score, winner, forfeit,
		       created_at, started_at, ended_at, duration_ms
		FROM matches
		WHERE finished = 1
		ORDER BY ended_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		var m Match
		var forfeit int
		var createdAt, startedAt, endedAt, durationMs int64

		if err := rows.Scan(
			&m.ID, &m.Map,
			&m.Players[0].UserID, &m.Players[0].Login, &m.Players[0].Score,
			&m.Players[1].UserID, &m.Players[1].Login, &m.Players[1].Score,
			&m.Winner, &forfeit,
			&createdAt, &startedAt, &endedAt, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}

		m.Forfeit = forfeit != 0
		m.Finished = true
		m.CreatedAt = time.UnixMilli(createdAt)
		m.StartedAt = time.UnixMilli(startedAt)
		m.EndedAt = time.UnixMilli(endedAt)
		m.Duration = time.Duration(durationMs) * time.Millisecond
		m.Players[0].Winner = m.Winner != "" && m.Winner == m.Players[0].Login
		m.Players[1].Winner = m.Winner != "" && m.Winner == m.Players[1].Login
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

// Leaderboard aggregates wins, losses and forfeits per login over all
// finished matches, best record first.
func (s *SQLiteStore) Leaderboard(ctx context.Context) ([]*Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT login,
		       COUNT(*)      AS played,
		       SUM(won)      AS wins,
		       SUM(gave_up)  AS forfeits
		FROM (
			SELECT p1_login AS login,
			       CASE WHEN winner = p1_login THEN 1 ELSE 0 END AS won,
			       CASE WHEN forfeit = 1 AND winner <> p1_login THEN 1 ELSE 0 END AS gave_up
			FROM matches WHERE finished = 1
			UNION ALL
			SELECT p2_login,
			       CASE WHEN winner = p2_login THEN 1 ELSE 0 END,
			       CASE WHEN forfeit = 1 AND winner <> p2_login THEN 1 ELSE 0 END
			FROM matches WHERE finished = 1
		)
		GROUP BY login`)
	if err != nil {
		return nil, fmt.Errorf("history: leaderboard query: %w", err)
	}
	defer rows.Close()

	var standings []*Standing
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.Login, &st.Played, &st.Wins, &st.Forfeits); err != nil {
			return nil, fmt.Errorf("history: leaderboard scan: %w", err)
		}
		st.Losses = st.Played - st.Wins
		standings = append(standings, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].Played < standings[j].Played
	})
	return standings, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
