package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore implements Recorder using one JSON file per match. It exists so
// the server can run without SQLite, at the cost of scanning the directory
// for history and leaderboard queries.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based match recorder rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create matches directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// CreateMatch writes the initial match file.
func (fs *FileStore) CreateMatch(ctx context.Context, m *Match) error {
	return fs.write(m)
}

// FinishMatch rewrites the match file with the final record.
func (fs *FileStore) FinishMatch(ctx context.Context, m *Match) error {
	final := *m
	final.Finished = true
	return fs.write(&final)
}

func (fs *FileStore) write(m *Match) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("match record requires an id")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	if err := os.WriteFile(fs.path(m.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write match file: %w", err)
	}
	return nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}

// History returns the most recently finished matches, newest first.
func (fs *FileStore) History(ctx context.Context, limit int) ([]*Match, error) {
	if limit <= 0 {
		limit = 50
	}

	matches, err := fs.readAll()
	if err != nil {
		return nil, err
	}

	finished := matches[:0]
	for _, m := range matches {
		if m.Finished {
			finished = append(finished, m)
		}
	}

	sort.Slice(finished, func(i, j int) bool {
		return finished[i].EndedAt.After(finished[j].EndedAt)
	})

	if len(finished) > limit {
		finished = finished[:limit]
	}
	return finished, nil
}

// Leaderboard aggregates standings by scanning every finished match file.
func (fs *FileStore) Leaderboard(ctx context.Context) ([]*Standing, error) {
	matches, err := fs.readAll()
	if err != nil {
		return nil, err
	}

	byLogin := make(map[string]*Standing)
	get := func(login string) *Standing {
		st, ok := byLogin[login]
		if !ok {
			st = &Standing{Login: login}
			byLogin[login] = st
		}
		return st
	}

	for _, m := range matches {
		if !m.Finished {
			continue
		}
		for _, p := range m.Players {
			st := get(p.Login)
			st.Played++
			if m.Winner == p.Login {
				st.Wins++
			} else {
				st.Losses++
				if m.Forfeit {
					st.Forfeits++
				}
			}
		}
	}

	standings := make([]*Standing, 0, len(byLogin))
	for _, st := range byLogin {
		standings = append(standings, st)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].Played < standings[j].Played
	})
	return standings, nil
}

func (fs *FileStore) readAll() ([]*Match, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read matches directory: %w", err)
	}

	var matches []*Match
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			// Skip unreadable files rather than failing the whole listing
			continue
		}

		var m Match
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		matches = append(matches, &m)
	}
	return matches, nil
}

// Close is a no-op for the file store.
func (fs *FileStore) Close() error {
	return nil
}
