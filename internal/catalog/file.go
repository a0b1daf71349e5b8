package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zulandar/drillplan/internal/models"
	"gopkg.in/yaml.v3"
)

// errTrailingData reports content after the catalog document.
var errTrailingData = errors.New("unexpected data after catalog")

// FileStore keeps the catalog in a single JSON or YAML file, chosen by the
// file extension (.yaml/.yml for YAML, anything else JSON). The whole file is
// rewritten on every append.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes read-modify-write within this process
}

// NewFileStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the catalog file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the catalog file, or returns the seed drills if it does not exist.
func (s *FileStore) Load(ctx context.Context) ([]models.Drill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

// Append validates d, assigns it the next id and rewrites the catalog file.
func (s *FileStore) Append(ctx context.Context, d models.Drill) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := Validate(d); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drills, err := s.load()
	if err != nil {
		return 0, err
	}
	d.ID = NextID(drills)
	drills = append(drills, d)
	if err := s.save(drills); err != nil {
		return 0, err
	}
	return d.ID, nil
}

// Filter loads the catalog and returns the drills matching both fields.
func (s *FileStore) Filter(ctx context.Context, ageCategory, sport string) ([]models.Drill, error) {
	drills, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(drills, ageCategory, sport), nil
}

// Save replaces the whole catalog. Ids are kept as given but must be unique.
func (s *FileStore) Save(ctx context.Context, drills []models.Drill) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkIDs(drills); err != nil {
		return fmt.Errorf("catalog: save %s: %w", s.path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(drills)
}

func (s *FileStore) load() ([]models.Drill, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.SeedDrills(), nil
	}
	if err != nil {
		return nil, &StorageReadError{Path: s.path, Err: err}
	}

	var drills []models.Drill
	if s.isYAML() {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&drills)
		if err == nil {
			var extra yaml.Node
			if dec.Decode(&extra) != io.EOF {
				err = errTrailingData
			}
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&drills)
		if err == nil {
			if _, tokErr := dec.Token(); tokErr != io.EOF {
				err = errTrailingData
			}
		}
	}
	if err != nil {
		return nil, &StorageReadError{Path: s.path, Err: err}
	}
	if err := checkIDs(drills); err != nil {
		return nil, &StorageReadError{Path: s.path, Err: err}
	}
	if drills == nil {
		drills = []models.Drill{}
	}
	return drills, nil
}

func (s *FileStore) save(drills []models.Drill) error {
	if drills == nil {
		drills = []models.Drill{}
	}
	data, err := s.encode(drills)
	if err != nil {
		return fmt.Errorf("catalog: encode %s: %w", s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("catalog: write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) encode(drills []models.Drill) ([]byte, error) {
	if s.isYAML() {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(drills); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(drills, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *FileStore) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a truncated catalog.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
