package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/promptdeck/promptdeck/internal/models"
)

// persisted is the on-disk shape of a chat session
type persisted struct {
	Turns []models.Message `json:"turns"`
}

// Load the persisted session from path. A missing file is not an error, it
// yields an empty active session.
func Load(path string) (*Session, error) {
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("reading session from '%v'\n", path))
	}
	s := New()
	s.SetActive(true)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to decode session JSON: %w", err)
	}
	s.Restore(p.Turns)
	return s, nil
}

// Save the session's turns to path
func Save(path string, s *Session) error {
	b, err := json.Marshal(persisted{Turns: s.Turns()})
	if err != nil {
		return fmt.Errorf("failed to encode session JSON: %w", err)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("saving session to: '%v'\n", path))
	}
	return os.WriteFile(path, b, 0o644)
}

// Discard removes the persisted session, if any
func Discard(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
