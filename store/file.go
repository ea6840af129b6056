package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/stagecraft/capture"
)

// FileStore keeps the record as one JSON or YAML document. Writes go to a
// temporary file that is renamed over the target, so a reader never sees
// a half-written record.
type FileStore struct {
	path   string
	format Format
	log    *slog.Logger
}

// NewFileStore creates a FileStore at path. The format follows the
// extension: .yaml/.yml is YAML, anything else JSON.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	f := FormatOf(path)
	if f != FormatYAML {
		f = FormatJSON
	}
	return &FileStore{path: path, format: f, log: log}
}

// Path returns the file the store writes.
func (s *FileStore) Path() string { return s.path }

// Persist overwrites the file with rec.
func (s *FileStore) Persist(ctx context.Context, rec capture.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store: persist: %w", err)
	}
	if rec == nil {
		rec = capture.Record{}
	}

	data, err := s.encode(rec)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("store: chmod: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}

	s.log.Info("store: checkpoint written", "file", s.path, "units", len(rec))
	return nil
}

// Load reads the record back. A missing file is ErrNotFound.
func (s *FileStore) Load(ctx context.Context) (capture.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	s.log.Info("store: reading record", "file", s.path)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}

	var rec capture.Record
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	if rec == nil {
		rec = capture.Record{}
	}
	return rec, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) encode(rec capture.Record) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(rec)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
