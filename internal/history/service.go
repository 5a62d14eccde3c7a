// Package history logs every conversation turn locally: who said what, in
// which chat, at which turn, and what the robot replied. Turn indices are
// allocated here and increase monotonically within a chat.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"leolani/internal/capsule"
	"leolani/internal/storage"
)

// Turn is one logged conversation turn.
type Turn struct {
	ID        int64
	Chat      string
	Turn      int
	Speaker   string
	Utterance string
	Reply     string
	Capsule   *capsule.Capsule
	CreatedAt time.Time
}

// Service is the chat log.
type Service struct {
	db *storage.DB
}

func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// NextTurn allocates the next turn index for a chat, starting at 1.
func (s *Service) NextTurn(chat string) (int, error) {
	var last int
	err := s.db.Conn().QueryRow(
		"SELECT COALESCE(MAX(turn), 0) FROM utterances WHERE chat = ?", chat).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last turn: %w", err)
	}
	return last + 1, nil
}

// Record stores one finished turn.
func (s *Service) Record(t Turn) error {
	capsuleJSON := ""
	if t.Capsule != nil {
		data, err := json.Marshal(t.Capsule)
		if err != nil {
			return fmt.Errorf("failed to encode capsule: %w", err)
		}
		capsuleJSON = string(data)
	}
	_, err := s.db.Conn().Exec(`
		INSERT INTO utterances (chat, turn, speaker, utterance, reply, capsule_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Chat, t.Turn, t.Speaker, t.Utterance, t.Reply, capsuleJSON,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Recent returns the latest turns, newest first.
func (s *Service) Recent(limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Conn().Query(`
		SELECT id, chat, turn, speaker, utterance, reply, capsule_json, created_at
		FROM utterances ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var capsuleJSON, createdAt string
		if err := rows.Scan(&t.ID, &t.Chat, &t.Turn, &t.Speaker, &t.Utterance, &t.Reply, &capsuleJSON, &createdAt); err != nil {
			return nil, err
		}
		if capsuleJSON != "" {
			var c capsule.Capsule
			if err := json.Unmarshal([]byte(capsuleJSON), &c); err == nil {
				t.Capsule = &c
			}
		}
		if created, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = created
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
