// Package filestore persists the system state as JSON files in a single
// directory: users.json and tasks.json hold full snapshots, archive.jsonl
// grows append-only with one finished task per line.
package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

// Store implements ports.PersistenceGateway on the local filesystem.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) usersPath() string   { return filepath.Join(s.dir, "users.json") }
func (s *Store) tasksPath() string   { return filepath.Join(s.dir, "tasks.json") }
func (s *Store) archivePath() string { return filepath.Join(s.dir, "archive.jsonl") }

// LoadAll reads both snapshots. Missing files mean a fresh store and yield
// empty collections.
func (s *Store) LoadAll(_ context.Context) ([]*domain.User, []*domain.Task, error) {
	var users []*domain.User
	if err := readJSON(s.usersPath(), &users); err != nil {
		return nil, nil, fmt.Errorf("reading users: %w", err)
	}
	var tasks []*domain.Task
	if err := readJSON(s.tasksPath(), &tasks); err != nil {
		return nil, nil, fmt.Errorf("reading tasks: %w", err)
	}
	return users, tasks, nil
}

func (s *Store) SaveAll(_ context.Context, users []*domain.User, tasks []*domain.Task) error {
	data, err := marshalIndented(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := writeFileAtomic(s.usersPath(), data); err != nil {
		return fmt.Errorf("writing users: %w", err)
	}

	data, err = marshalIndented(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := writeFileAtomic(s.tasksPath(), data); err != nil {
		return fmt.Errorf("writing tasks: %w", err)
	}
	return nil
}

func (s *Store) AppendArchive(_ context.Context, entry domain.ArchiveEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal archive entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(s.archivePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("appending archive: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing archive: %w", err)
	}
	return f.Close()
}

func (s *Store) ReadArchive(_ context.Context) ([]domain.ArchiveEntry, error) {
	f, err := os.Open(s.archivePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var entries []domain.ArchiveEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.ArchiveEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decoding archive entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return entries, nil
}

func marshalIndented(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// writeFileAtomic writes data to a temp file and renames it over path, so a
// failed write can never leave a half-written snapshot behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
