// Package roster manages the known-entities roster: the person names the
// pipeline can resolve pronouns and noisy transcriptions against. The
// roster only grows through the explicit meet flow; the pipeline itself
// reads immutable per-turn snapshots so a concurrent meet never mutates a
// turn in flight.
package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"leolani/internal/storage"
)

// Service is the persistent roster.
type Service struct {
	db *storage.DB
}

func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Meet enrolls a new person. Meeting the same person twice is harmless.
func (s *Service) Meet(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("cannot meet an empty name")
	}
	_, err := s.db.Conn().Exec(
		"INSERT INTO roster (name, met_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store name: %w", err)
	}
	return nil
}

// Snapshot returns a sorted copy of all known names. Callers hold it for
// one turn; it never changes underneath them.
func (s *Service) Snapshot() ([]string, error) {
	rows, err := s.db.Conn().Query("SELECT name FROM roster")
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Knows reports whether a name is on the roster.
func (s *Service) Knows(name string) (bool, error) {
	var count int
	err := s.db.Conn().QueryRow(
		"SELECT COUNT(*) FROM roster WHERE name = ?",
		strings.ToLower(strings.TrimSpace(name))).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
