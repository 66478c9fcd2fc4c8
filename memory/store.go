package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seralind/toolloop/chat"
)

// Store persists a session transcript between runs.
type Store interface {
	Save(ctx context.Context, id string, msgs []chat.Message) error
	// Load returns the stored transcript; a missing session is (nil, nil).
	Load(ctx context.Context, id string) ([]chat.Message, error)
}

// FileStore keeps one JSON file per session under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// Save writes the transcript via a temp file and rename, so a crash
// mid-write never leaves a truncated transcript behind.
func (s *FileStore) Save(ctx context.Context, id string, msgs []chat.Message) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, id+"-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, s.path(id))
}

func (s *FileStore) Load(ctx context.Context, id string) ([]chat.Message, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []chat.Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", id, err)
	}
	return msgs, nil
}

var _ Store = (*FileStore)(nil)
